package handlers

import (
	"fmt"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/medconsult/consultation-service/internal/domain"
	"github.com/medconsult/consultation-service/internal/service"
	"github.com/medconsult/consultation-service/internal/storage"
)

// ProfileHandler serves the caller's own account for doctors and patients.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// DoctorDashboard handles GET /api/doctor/dashboard.
func (h *ProfileHandler) DoctorDashboard(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Hello Doctor %s, this is your dashboard.", me.Name),
		"user":    me,
	})
}

// DoctorProfile handles GET /api/doctor/profile.
func (h *ProfileHandler) DoctorProfile(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	user, err := h.profiles.Get(c.UserContext(), me.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}

// PatientProfile handles GET /api/patient/profile.
func (h *ProfileHandler) PatientProfile(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	user, err := h.profiles.Get(c.UserContext(), me.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Hello Patient %s, this is your profile page.", user.Name),
		"user":    user,
	})
}

// UpdatePatient handles PUT /api/patient/profile. Keys outside the patient set are ignored.
func (h *ProfileHandler) UpdatePatient(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	var patch domain.PatientProfilePatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	user, err := h.profiles.UpdatePatient(c.UserContext(), me.ID, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "user": user})
}

// UpdateDoctor handles PUT /api/doctor/profile.
func (h *ProfileHandler) UpdateDoctor(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	var patch domain.DoctorProfilePatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	user, err := h.profiles.UpdateDoctor(c.UserContext(), me.ID, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "user": user})
}

// UploadPicture handles POST /api/{doctor,patient}/upload-profile-pic with multipart field profilePic.
func (h *ProfileHandler) UploadPicture(c *fiber.Ctx) error {
	me, err := caller(c)
	if err != nil {
		return err
	}
	var user *domain.User
	err = withUpload(c, "profilePic", func(u service.Upload) error {
		var err error
		user, err = h.profiles.SetProfilePicture(c.UserContext(), me.ID, u)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":       "Profile picture uploaded successfully",
		"profilePicUrl": user.ProfilePicURL,
	})
}

// ServePicture handles GET /uploads/profile/:file.
func (h *ProfileHandler) ServePicture(c *fiber.Ctx) error {
	file := c.Params("file")
	rc, err := h.profiles.OpenProfilePicture(c.UserContext(), storage.PrefixProfile+"/"+file)
	if err != nil {
		return err
	}
	c.Type(filepath.Ext(file))
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.SendStream(rc)
}
