package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soteria/accounts-system/internal/api/metrics"
	"github.com/soteria/accounts-system/internal/core/domain"
	"github.com/soteria/accounts-system/internal/core/ports"
	"github.com/soteria/accounts-system/internal/core/service"
)

type AccountHandler struct {
	registration ports.RegistrationService
}

func NewAccountHandler(registration ports.RegistrationService) *AccountHandler {
	return &AccountHandler{registration: registration}
}

// Register creates a new user account.
//
// @Summary      Register a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]any  true  "Registration fields: username, password, role"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  apiError
// @Failure      422   {object}  apiError
// @Failure      500   {object}  apiError
// @Router       /accounts/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	// Bind to a raw map so the validation pipeline sees the body before any
	// schema coercion: absent keys and wrong JSON types are distinct rules.
	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if v := service.ValidateRegistration(body); v != nil {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		metrics.ValidationFailuresTotal.WithLabelValues(string(v.Kind)).Inc()
		return v
	}

	// Type assertions are safe: the pipeline verified all three are strings.
	in := ports.RegisterInput{
		Username: body["username"].(string),
		Password: body["password"].(string),
		Role:     body["role"].(string),
	}

	user, err := h.registration.Register(c.Request().Context(), in)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
			metrics.ValidationFailuresTotal.WithLabelValues(string(ve.Kind)).Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, registerResponse{
		Account: accountResponse{
			ID:        user.ID,
			Username:  user.Username,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		},
	})
}

// Availability reports whether a username is free to register. The answer is
// advisory: a concurrent registration can take the name immediately after.
//
// @Summary      Check username availability
// @Tags         accounts
// @Produce      json
// @Param        username  path      string  true  "Candidate username"
// @Success      200       {object}  availabilityResponse
// @Failure      422       {object}  apiError
// @Failure      500       {object}  apiError
// @Router       /accounts/{username}/availability [get]
func (h *AccountHandler) Availability(c echo.Context) error {
	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	available, err := h.registration.UsernameAvailable(c.Request().Context(), req.Username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, availabilityResponse{
		Username:  req.Username,
		Available: available,
	})
}
