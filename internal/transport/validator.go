package transport

import (
	"sync"

	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the domain enum rules to gin's validator engine.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, ok := entity.ParseCategory(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("participation", func(fl validator.FieldLevel) bool {
			_, ok := entity.ParseParticipationMode(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("rsvp_status", func(fl validator.FieldLevel) bool {
			_, ok := entity.ParseRSVPStatus(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("volunteer_status", func(fl validator.FieldLevel) bool {
			_, ok := entity.ParseVolunteerStatus(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			_, ok := entity.ParseRole(fl.Field().String())
			return ok
		})
	})
}
