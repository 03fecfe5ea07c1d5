package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Static master data served to the certificate forms.
var (
	vehicleMakes = []string{"Toyota", "Nissan", "Isuzu", "Mitsubishi", "Mazda"}
	bodyTypes    = []string{"Pickup", "Lorry", "Saloon", "SUV", "Mini Bus"}
	devices      = []string{"DeviceA", "DeviceB", "DeviceC", "DeviceD"}
)

// MasterDataHandler serves the static lookup lists.
type MasterDataHandler struct{}

// NewMasterDataHandler returns a new handler instance.
func NewMasterDataHandler() *MasterDataHandler {
	return &MasterDataHandler{}
}

// VehicleMakes GET /api/vehicle-makes.
func (h *MasterDataHandler) VehicleMakes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": vehicleMakes})
}

// BodyTypes GET /api/body-types.
func (h *MasterDataHandler) BodyTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": bodyTypes})
}

// Devices GET /api/devices.
func (h *MasterDataHandler) Devices(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": devices})
}
