package repository

import (
	"context"

	"connectsphere/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChannelRepository struct {
	orm *gorm.DB
}

func NewChannelRepository(orm *gorm.DB) *ChannelRepository {
	return &ChannelRepository{orm: orm}
}

func (r *ChannelRepository) List(ctx context.Context) ([]model.Channel, error) {
	var channels []model.Channel
	err := r.orm.WithContext(ctx).Order("id ASC").Find(&channels).Error
	return channels, translate(err, "channel")
}

func (r *ChannelRepository) GetByName(ctx context.Context, name string) (*model.Channel, error) {
	var ch model.Channel
	if err := r.orm.WithContext(ctx).Where("name = ?", name).First(&ch).Error; err != nil {
		return nil, translate(err, "channel")
	}
	return &ch, nil
}

// Create inserts the channel and, when admin is non-empty, its first member as admin, atomically.
func (r *ChannelRepository) Create(ctx context.Context, ch *model.Channel, admin string) error {
	err := r.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ch).Error; err != nil {
			return err
		}
		if admin == "" {
			return nil
		}
		return tx.Create(&model.ChannelMember{Channel: ch.Name, Username: admin, Role: model.RoleAdmin}).Error
	})
	return translate(err, "channel")
}

// Ensure creates each named channel that does not exist yet, owned by createdBy.
func (r *ChannelRepository) Ensure(ctx context.Context, createdBy string, names ...string) error {
	for _, name := range names {
		ch := model.Channel{Name: name, CreatedBy: createdBy}
		err := r.orm.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&ch).Error
		if err != nil {
			return translate(err, "channel")
		}
	}
	return nil
}

// Rename moves the channel, its members and its messages to newName in one transaction.
func (r *ChannelRepository) Rename(ctx context.Context, oldName, newName string) error {
	err := r.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Channel{}).Where("name = ?", oldName).Update("name", newName)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&model.ChannelMember{}).Where("channel = ?", oldName).Update("channel", newName).Error; err != nil {
			return err
		}
		return tx.Model(&model.Message{}).Where("room = ?", oldName).Update("room", newName).Error
	})
	return translate(err, "channel")
}

// Delete removes the channel with its members and messages in one transaction.
// Deleting an unknown name still clears stray members and messages.
func (r *ChannelRepository) Delete(ctx context.Context, name string) error {
	err := r.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).Delete(&model.Channel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("channel = ?", name).Delete(&model.ChannelMember{}).Error; err != nil {
			return err
		}
		return tx.Where("room = ?", name).Delete(&model.Message{}).Error
	})
	return translate(err, "channel")
}

type MemberRepository struct {
	orm *gorm.DB
}

func NewMemberRepository(orm *gorm.DB) *MemberRepository {
	return &MemberRepository{orm: orm}
}

func (r *MemberRepository) ListByChannel(ctx context.Context, channel string) ([]model.ChannelMember, error) {
	var members []model.ChannelMember
	err := r.orm.WithContext(ctx).Where("channel = ?", channel).Order("id ASC").Find(&members).Error
	return members, translate(err, "member")
}

// Add relies on the (channel, username) unique index; a repeat returns errs.ErrConflict.
func (r *MemberRepository) Add(ctx context.Context, m *model.ChannelMember) error {
	if m.Role == "" {
		m.Role = model.RoleMember
	}
	return translate(r.orm.WithContext(ctx).Create(m).Error, "member")
}

// Ensure adds username to channel unless already a member.
func (r *MemberRepository) Ensure(ctx context.Context, channel, username, role string) error {
	err := r.orm.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "channel"}, {Name: "username"}}, DoNothing: true}).
		Create(&model.ChannelMember{Channel: channel, Username: username, Role: role}).Error
	return translate(err, "member")
}

func (r *MemberRepository) Remove(ctx context.Context, channel, username string) error {
	err := r.orm.WithContext(ctx).
		Where("channel = ? AND username = ?", channel, username).
		Delete(&model.ChannelMember{}).Error
	return translate(err, "member")
}
