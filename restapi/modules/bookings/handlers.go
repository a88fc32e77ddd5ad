package bookings

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/schoolbridge/schedsync/model"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrNotProvisioned):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrBookingFailed):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// GetAvailability handles GET requests for an expert's bookable slots.
func GetAvailability(p *Proxy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		staffKey := c.Params("key")

		dateFrom, err := time.Parse(time.RFC3339, c.Query("dateFrom"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "dateFrom must be RFC3339",
			})
		}
		dateTo, err := time.Parse(time.RFC3339, c.Query("dateTo"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "dateTo must be RFC3339",
			})
		}

		slots, err := p.ListAvailability(c.Context(), staffKey, dateFrom, dateTo)
		if err != nil {
			return c.Status(statusForError(err)).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"slots":   slots,
		})
	}
}

// PostBooking handles POST requests for creating a booking.
func PostBooking(p *Proxy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var draft BookingDraft
		if err := c.BodyParser(&draft); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		if draft.ExpertStaffKey == "" || draft.Start.IsZero() || draft.End.IsZero() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "expert_staff_key, start, and end are required",
			})
		}

		booking, err := p.CreateBooking(c.Context(), draft)
		if err != nil {
			resp := fiber.Map{
				"success": false,
				"message": err.Error(),
			}
			if booking != nil {
				resp["booking"] = booking
			}
			return c.Status(statusForError(err)).JSON(resp)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"booking": booking,
		})
	}
}

// statusNotification is the webhook payload delivered by the external
// platform when a booking changes state out-of-band.
type statusNotification struct {
	ExternalBookingID int64  `json:"external_booking_id"`
	Status            string `json:"status"`
}

// PostStatusWebhook handles the fire-and-forget booking status notification
// entry point. Unknown external ids are acknowledged and ignored.
func PostStatusWebhook(p *Proxy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var notification statusNotification
		if err := c.BodyParser(&notification); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		if notification.ExternalBookingID == 0 || notification.Status == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "external_booking_id and status are required",
			})
		}

		if err := p.ApplyExternalStatus(c.Context(), notification.ExternalBookingID, notification.Status); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		return c.JSON(fiber.Map{"success": true})
	}
}
