package utils

import "github.com/google/uuid"

// UUIDGenerator issues session ids and device-local record ids. Ids are
// UUIDv7 so records created in one session sort by creation time.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate falls back to a random UUIDv4 when the clock based variant
// cannot be produced.
func (g *UUIDGenerator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
