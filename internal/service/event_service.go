package service

import (
	"context"
	"strings"
	"time"

	"connectsphere/internal/model"
	"connectsphere/internal/repository"
	"connectsphere/pkg/errs"
)

// EventInput body of an event create or update
type EventInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Type        string   `json:"type"`
	Color       string   `json:"color"`
	CreatedBy   string   `json:"createdBy"`
	Attendees   []string `json:"attendees"`
}

type EventService struct {
	events *repository.EventRepository
}

func NewEventService(events *repository.EventRepository) *EventService {
	return &EventService{events: events}
}

func (s *EventService) List(ctx context.Context) ([]model.CalendarEvent, error) {
	return s.events.List(ctx)
}

func (s *EventService) Create(ctx context.Context, in EventInput) (*model.CalendarEvent, error) {
	ev := &model.CalendarEvent{CreatedBy: in.CreatedBy}
	if err := apply(ev, in); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Update replaces the editable fields and returns the stored event.
func (s *EventService) Update(ctx context.Context, id uint, in EventInput) (*model.CalendarEvent, error) {
	ev, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(ev, in); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, ev); err != nil {
		return nil, err
	}
	return s.events.Get(ctx, id)
}

func (s *EventService) Delete(ctx context.Context, id uint) error {
	return s.events.Delete(ctx, id)
}

// apply validates in and copies it onto ev, filling type and color defaults.
func apply(ev *model.CalendarEvent, in EventInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return errs.Invalid("title is required")
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return errs.Invalid("date must be YYYY-MM-DD")
	}
	for _, t := range []string{in.StartTime, in.EndTime} {
		if t == "" {
			continue
		}
		if _, err := time.Parse("15:04", t); err != nil {
			return errs.Invalid("times must be HH:MM")
		}
	}

	typ := in.Type
	if typ == "" {
		typ = model.EventMeeting
	}
	if !model.ValidEventType(typ) {
		return errs.Invalid("invalid event type %q", in.Type)
	}
	color := in.Color
	if color == "" {
		color = model.DefaultEventColor
	}
	attendees := in.Attendees
	if attendees == nil {
		attendees = []string{}
	}

	ev.Title = title
	ev.Description = in.Description
	ev.Date = in.Date
	ev.StartTime = in.StartTime
	ev.EndTime = in.EndTime
	ev.Type = typ
	ev.Color = color
	ev.Attendees = attendees
	return nil
}
