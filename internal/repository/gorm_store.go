package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hzj010427/YACA/internal/domain"
)

// GormStore is the durable Store backed by GORM. It supports every driver
// pkg/database can open.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Init migrates the schema.
func (s *GormStore) Init(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&domain.UserModel{},
		&domain.MessageModel{},
		&domain.ReplyModel{},
	)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) SaveUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	model := domain.UserToModel(user)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var model domain.UserModel
	err := s.db.WithContext(ctx).First(&model, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (s *GormStore) FindAllUsers(ctx context.Context) ([]*domain.User, error) {
	var models []domain.UserModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(models))
	for i := range models {
		users = append(users, models[i].ToDomain())
	}
	return users, nil
}

func (s *GormStore) DeleteUser(ctx context.Context, username string) (*domain.User, error) {
	var deleted *domain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.UserModel
		if err := tx.First(&model, "username = ?", username).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.Delete(&domain.UserModel{}, "username = ?", username).Error; err != nil {
			return err
		}
		deleted = model.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// SaveMessage creates the message row or replaces the mutable columns of an
// existing one with the same id.
func (s *GormStore) SaveMessage(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	model := domain.MessageToModel(msg)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"text", "display_name", "reactions", "reply_count"}),
	}).Create(model).Error
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

func (s *GormStore) FindMessageByID(ctx context.Context, id string) (*domain.ChatMessage, error) {
	var model domain.MessageModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (s *GormStore) FindAllMessages(ctx context.Context) ([]*domain.ChatMessage, error) {
	var models []domain.MessageModel
	if err := s.db.WithContext(ctx).Order("seq").Find(&models).Error; err != nil {
		return nil, err
	}
	msgs := make([]*domain.ChatMessage, 0, len(models))
	for i := range models {
		msgs = append(msgs, models[i].ToDomain())
	}
	return msgs, nil
}

func (s *GormStore) DeleteMessageByID(ctx context.Context, id string) (*domain.ChatMessage, error) {
	var deleted *domain.ChatMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.MessageModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessageNotFound
			}
			return err
		}
		if err := tx.Delete(&domain.MessageModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		deleted = model.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// DeleteMessagesByAuthor removes all messages by one author in a single
// transaction and returns the deleted set in insertion order.
func (s *GormStore) DeleteMessagesByAuthor(ctx context.Context, author string) ([]*domain.ChatMessage, error) {
	var deleted []*domain.ChatMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var models []domain.MessageModel
		if err := tx.Order("seq").Find(&models, "author = ?", author).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Delete(&domain.MessageModel{}, "author = ?", author).Error; err != nil {
			return err
		}
		for i := range models {
			deleted = append(deleted, models[i].ToDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// IncrementReplyCount bumps the reply counter by exactly one inside a
// transaction so concurrent replies never lose an increment.
func (s *GormStore) IncrementReplyCount(ctx context.Context, id string) (*domain.ChatMessage, error) {
	var updated *domain.ChatMessage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.MessageModel{}).
			Where("id = ?", id).
			UpdateColumn("reply_count", gorm.Expr("reply_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrMessageNotFound
		}
		var model domain.MessageModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			return err
		}
		updated = model.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *GormStore) SaveReply(ctx context.Context, reply *domain.Reply) (*domain.Reply, error) {
	model := domain.ReplyToModel(reply)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

func (s *GormStore) FindRepliesByMessageID(ctx context.Context, messageID string) ([]*domain.Reply, error) {
	var models []domain.ReplyModel
	err := s.db.WithContext(ctx).Order("seq").Find(&models, "message_id = ?", messageID).Error
	if err != nil {
		return nil, err
	}
	replies := make([]*domain.Reply, 0, len(models))
	for i := range models {
		replies = append(replies, models[i].ToDomain())
	}
	return replies, nil
}

// isDuplicateKey detects unique constraint violations across the supported
// drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "Duplicate entry")
}
