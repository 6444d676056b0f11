package repository

import (
	"context"

	"connectsphere/internal/model"

	"gorm.io/gorm"
)

type EventRepository struct {
	orm *gorm.DB
}

func NewEventRepository(orm *gorm.DB) *EventRepository {
	return &EventRepository{orm: orm}
}

// List orders by date then start time.
func (r *EventRepository) List(ctx context.Context) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	err := r.orm.WithContext(ctx).Order("date ASC").Order("start_time ASC").Order("id ASC").Find(&events).Error
	return events, translate(err, "event")
}

func (r *EventRepository) Get(ctx context.Context, id uint) (*model.CalendarEvent, error) {
	var ev model.CalendarEvent
	if err := r.orm.WithContext(ctx).First(&ev, id).Error; err != nil {
		return nil, translate(err, "event")
	}
	return &ev, nil
}

func (r *EventRepository) Create(ctx context.Context, ev *model.CalendarEvent) error {
	return translate(r.orm.WithContext(ctx).Create(ev).Error, "event")
}

// Update overwrites every editable field of ev, keeping ID, CreatedBy and CreatedAt.
func (r *EventRepository) Update(ctx context.Context, ev *model.CalendarEvent) error {
	res := r.orm.WithContext(ctx).Model(&model.CalendarEvent{ID: ev.ID}).
		Select("title", "description", "date", "start_time", "end_time", "type", "color", "attendees").
		Updates(ev)
	if res.Error != nil {
		return translate(res.Error, "event")
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id uint) error {
	return translate(r.orm.WithContext(ctx).Delete(&model.CalendarEvent{}, id).Error, "event")
}
