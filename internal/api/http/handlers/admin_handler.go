package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/medconsult/consultation-service/internal/service"
)

const defaultFailedNotificationsLimit = 50

// AdminHandler exposes the admin route group.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Overview handles GET /api/admin/overview.
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Hello Admin %s, this is your overview page.", me.Name),
		"user":    me,
	})
}

// Users handles GET /api/admin/users with optional role and status filters.
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.UserContext(), c.Query("role"), c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// PendingDoctors handles GET /api/admin/doctors/pending.
func (h *AdminHandler) PendingDoctors(c *fiber.Ctx) error {
	doctors, err := h.admin.PendingDoctors(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(doctors)
}

// ApproveDoctor handles PATCH /api/admin/doctors/approve/:id.
func (h *AdminHandler) ApproveDoctor(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	doctor, err := h.admin.ApproveDoctor(c.UserContext(), me, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Doctor %s approved successfully", doctor.Name)})
}

// RejectDoctor handles PATCH /api/admin/doctors/reject/:id.
func (h *AdminHandler) RejectDoctor(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	doctor, err := h.admin.RejectDoctor(c.UserContext(), me, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Doctor %s rejected successfully", doctor.Name)})
}

// FailedNotifications handles GET /api/admin/notifications/failed?limit=.
func (h *AdminHandler) FailedNotifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultFailedNotificationsLimit)
	if limit <= 0 || limit > 500 {
		limit = defaultFailedNotificationsLimit
	}
	entries, err := h.admin.FailedNotifications(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}
