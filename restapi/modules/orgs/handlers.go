package orgs

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/schoolbridge/schedsync/model"
	"github.com/schoolbridge/schedsync/util"
)

// statusForError maps orchestration failures onto HTTP statuses. Transient
// families come back 502 so callers know a retry with backoff may succeed.
func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrDuplicateSlug), errors.Is(err, model.ErrNotProvisioned):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrDefaultAdminMissing), errors.Is(err, model.ErrCompensationFailed):
		return fiber.StatusInternalServerError
	case errors.Is(err, model.ErrLookupFailed), errors.Is(err, model.ErrMembershipFailed), errors.Is(err, model.ErrBookingFailed):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// PostOrganization handles POST requests for provisioning an organization.
func PostOrganization(p *Provisioner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var draft OrgDraft
		if err := c.BodyParser(&draft); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		if draft.Name == "" || draft.Slug == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Organization name and slug are required",
			})
		}

		org, err := p.ProvisionOrganization(c.Context(), draft)
		if err != nil {
			return c.Status(statusForError(err)).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":      true,
			"organization": org,
		})
	}
}

// GetOrganization returns an organization by slug, provisioning state
// included.
func GetOrganization(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := util.NormalizeSlug(c.Params("slug"))

		org, err := store.FindOrgBySlug(c.Context(), slug)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to load organization: " + err.Error(),
			})
		}
		if org == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Organization not found",
			})
		}

		return c.JSON(fiber.Map{
			"success":      true,
			"organization": org,
		})
	}
}

// PostStaff handles POST requests for adding a staff member to an
// organization.
func PostStaff(p *Provisioner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var draft StaffDraft
		if err := c.BodyParser(&draft); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		if draft.Email == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Staff email is required",
			})
		}

		staff, err := p.AddStaff(c.Context(), c.Params("slug"), draft)
		if err != nil {
			return c.Status(statusForError(err)).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"staff":   staff,
		})
	}
}
