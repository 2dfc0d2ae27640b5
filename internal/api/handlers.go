package api

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mockline/scheduler/internal/meetings"
	"github.com/mockline/scheduler/internal/repo/models"
	"github.com/mockline/scheduler/internal/scheduling"
	"github.com/mockline/scheduler/pkg/errors"
)

func (s *server) handleCreateSlot(c *fiber.Ctx) error {
	var slot models.AvailabilitySlot
	err := c.BodyParser(&slot)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "parse slot payload"))
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	if !slot.Valid() {
		return s.sendError(c, http.StatusBadRequest, "tutor id, date and a valid hour range are required")
	}

	id, err := s.slots.Create(c.Context(), slot)
	if err != nil {
		return errors.WrapFail(err, "create slot")
	}

	return c.Status(http.StatusCreated).JSON(map[string]string{"id": id})
}

func (s *server) handleCreateSlotsBulk(c *fiber.Ctx) error {
	var slots []models.AvailabilitySlot
	err := c.BodyParser(&slots)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "parse slots payload"))
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	for _, slot := range slots {
		if !slot.Valid() {
			return s.sendError(c, http.StatusBadRequest, "every slot needs tutor id, date and a valid hour range")
		}
	}

	ids, err := s.slots.CreateBulk(c.Context(), slots)
	if err != nil {
		return errors.WrapFail(err, "create slots")
	}

	return c.Status(http.StatusCreated).JSON(map[string][]string{"ids": ids})
}

func (s *server) handleListSlots(c *fiber.Ctx) error {
	if interviewID := c.Query("interview_id"); interviewID != "" {
		slots, err := s.slots.FindByInterview(c.Context(), interviewID)
		if err != nil {
			return errors.WrapFail(err, "list slots by interview")
		}
		return c.JSON(slots)
	}

	tutorID := c.Query("tutor_id")
	if tutorID == "" {
		return s.sendError(c, http.StatusBadRequest, "either \"tutor_id\" or \"interview_id\" is required")
	}

	var date *string
	if d := c.Query("date"); d != "" {
		date = &d
	}

	slots, err := s.slots.FindByTutor(c.Context(), tutorID, date)
	if err != nil {
		return errors.WrapFail(err, "list slots")
	}

	return c.JSON(slots)
}

func (s *server) handleDeleteSlot(c *fiber.Ctx) error {
	tutorID := c.Query("tutor_id")
	if tutorID == "" {
		return s.sendError(c, http.StatusBadRequest, "missing required parameter \"tutor_id\"")
	}

	deleted, err := s.slots.Delete(c.Context(), c.Params("id"), tutorID)
	if err != nil {
		return errors.WrapFail(err, "delete slot")
	}
	if !deleted {
		return s.sendError(c, http.StatusNotFound, "slot not found")
	}

	return c.SendStatus(http.StatusNoContent)
}

func (s *server) handleCreateInterview(c *fiber.Ctx) error {
	var req struct {
		StudentID string `json:"student_id"`
		BookingID string `json:"booking_id"`
	}

	err := c.BodyParser(&req)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "parse interview payload"))
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	id, err := s.intake.CreateFromBooking(c.Context(), req.StudentID, req.BookingID)
	if err != nil {
		if req.StudentID == "" {
			return s.sendError(c, http.StatusBadRequest, "student_id is required")
		}
		return errors.WrapFail(err, "create interview")
	}

	return c.Status(http.StatusCreated).JSON(map[string]string{"id": id})
}

func (s *server) handleGetInterview(c *fiber.Ctx) error {
	i, err := s.interviews.Find(c.Context(), c.Params("id"))
	if err != nil {
		return errors.WrapFail(err, "find interview")
	}
	if i == nil {
		return s.sendError(c, http.StatusNotFound, "interview not found")
	}

	return c.JSON(i)
}

func (s *server) handleGetMeeting(c *fiber.Ctx) error {
	i, err := s.interviews.Find(c.Context(), c.Params("id"))
	if err != nil {
		return errors.WrapFail(err, "find interview")
	}
	if i == nil || i.MeetingID == nil {
		return s.sendError(c, http.StatusNotFound, "no meeting attached")
	}

	m, err := s.provider.Get(c.Context(), *i.MeetingID)
	if err != nil {
		return s.sendSchedulingError(c, err)
	}

	return c.JSON(m)
}

func (s *server) handleListInterviews(c *fiber.Ctx) error {
	if studentID := c.Query("student_id"); studentID != "" {
		list, err := s.interviews.FindByStudent(c.Context(), studentID)
		if err != nil {
			return errors.WrapFail(err, "list interviews by student")
		}
		return c.JSON(list)
	}

	if tutorID := c.Query("tutor_id"); tutorID != "" {
		list, err := s.interviews.FindByTutor(c.Context(), tutorID)
		if err != nil {
			return errors.WrapFail(err, "list interviews by tutor")
		}
		return c.JSON(list)
	}

	return s.sendError(c, http.StatusBadRequest, "either \"student_id\" or \"tutor_id\" is required")
}

func (s *server) handleDeleteInterview(c *fiber.Ctx) error {
	found, err := s.scheduler.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendSchedulingError(c, err)
	}
	if !found {
		return s.sendError(c, http.StatusNotFound, "interview not found")
	}

	return c.SendStatus(http.StatusNoContent)
}

func (s *server) handleAssign(c *fiber.Ctx) error {
	var req struct {
		TutorID string  `json:"tutor_id"`
		StartAt string  `json:"start_at"`
		SlotID  *string `json:"slot_id"`
	}

	err := c.BodyParser(&req)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "parse assign payload"))
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return s.sendError(c, http.StatusBadRequest, "start_at must be RFC 3339")
	}

	i, err := s.scheduler.Assign(c.Context(), scheduling.AssignRequest{
		InterviewID: c.Params("id"),
		TutorID:     req.TutorID,
		StartAt:     startAt,
		SlotID:      req.SlotID,
	})
	if err != nil {
		return s.sendSchedulingError(c, err)
	}

	return c.JSON(i)
}

func (s *server) handleConfirm(c *fiber.Ctx) error {
	var req struct {
		TutorName   string `json:"tutor_name"`
		StudentName string `json:"student_name"`
	}

	err := c.BodyParser(&req)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "parse confirm payload"))
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	i, err := s.scheduler.Confirm(c.Context(), scheduling.ConfirmRequest{
		InterviewID: c.Params("id"),
		TutorName:   req.TutorName,
		StudentName: req.StudentName,
	})
	if err != nil {
		return s.sendSchedulingError(c, err)
	}

	return c.JSON(i)
}

func (s *server) handleCancel(c *fiber.Ctx) error {
	i, err := s.scheduler.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return s.sendSchedulingError(c, err)
	}

	return c.JSON(i)
}

func (s *server) handleComplete(c *fiber.Ctx) error {
	var req struct {
		Notes string `json:"notes"`
	}

	err := c.BodyParser(&req)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "parse complete payload"))
		return s.sendError(c, http.StatusBadRequest, "bad json")
	}

	err = s.scheduler.Complete(c.Context(), c.Params("id"), req.Notes)
	if err != nil {
		return s.sendSchedulingError(c, err)
	}

	return c.SendStatus(http.StatusNoContent)
}

// sendSchedulingError maps the scheduler's error taxonomy onto statuses:
// user-correctable rejections are 4xx, provider outages 502, the rest 500.
func (s *server) sendSchedulingError(c *fiber.Ctx, err error) error {
	var validation *scheduling.ValidationError
	if errors.As(err, &validation) {
		return s.sendError(c, http.StatusConflict, validation.Reason)
	}

	if errors.Is(err, scheduling.ErrNoHostAvailable) {
		return s.sendError(c, http.StatusConflict, "no meeting slot available, try another time")
	}

	var provider *meetings.ProviderError
	if errors.As(err, &provider) {
		s.log.Warn(err)
		return s.sendError(c, http.StatusBadGateway, "meeting provider is unavailable")
	}

	return err
}
