package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/fluxio-api/internal/models"
	"github.com/sbilibin2017/fluxio-api/internal/services"
	"github.com/sbilibin2017/fluxio-api/internal/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUser() *models.User {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return &models.User{
		ID:                   1,
		Username:             "john_doe",
		Email:                "john@example.com",
		FirstName:            "John",
		LastName:             "Doe",
		PreferredCurrency:    models.DefaultPreferredCurrency,
		LanguagePreference:   models.DefaultLanguagePreference,
		Timezone:             models.DefaultTimezone,
		NotificationsEnabled: true,
		IsActive:             true,
		CreatedAt:            created,
		UpdatedAt:            created,
	}
}

func TestRegisterHandler(t *testing.T) {
	valid := `{"username":"john_doe","email":"john@example.com","password":"secret123","first_name":"John","last_name":"Doe"}`

	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockRegisterer)
		expectedCode int
		expectedErr  string
	}{
		{
			name: "success",
			body: valid,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().
					Register(gomock.Any(), models.RegisterRequest{
						Username:  "john_doe",
						Email:     "john@example.com",
						Password:  "secret123",
						FirstName: "John",
						LastName:  "Doe",
					}).
					Return(sampleUser(), nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "missing fields",
			body:         `{"username":"john_doe","email":"john@example.com","password":"secret123"}`,
			expectedCode: http.StatusBadRequest,
			expectedErr:  validators.MsgRegisterMissingFields,
		},
		{
			name:         "invalid email",
			body:         strings.Replace(valid, "john@example.com", "not-an-email", 1),
			expectedCode: http.StatusBadRequest,
			expectedErr:  validators.MsgInvalidEmail,
		},
		{
			name:         "short password",
			body:         strings.Replace(valid, "secret123", "12345", 1),
			expectedCode: http.StatusBadRequest,
			expectedErr:  validators.MsgPasswordTooShort,
		},
		{
			name:         "invalid json",
			body:         "{invalid json}",
			expectedCode: http.StatusBadRequest,
			expectedErr:  validators.MsgInvalidBody,
		},
		{
			name: "email already registered",
			body: valid,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, services.ErrEmailAlreadyExists)
			},
			expectedCode: http.StatusConflict,
			expectedErr:  "email is already registered",
		},
		{
			name: "username already in use",
			body: valid,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, services.ErrUsernameAlreadyExists)
			},
			expectedCode: http.StatusConflict,
			expectedErr:  "username is already in use",
		},
		{
			name: "password too long for hasher",
			body: valid,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), gomock.Any()).
					Return(nil, validators.NewValidationError(validators.MsgPasswordTooLong))
			},
			expectedCode: http.StatusBadRequest,
			expectedErr:  validators.MsgPasswordTooLong,
		},
		{
			name: "internal server error",
			body: valid,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, errors.New("database failure"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedErr:  MsgInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockSvc := NewMockRegisterer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewRegisterHandler(mockSvc)
			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			env := decodeEnvelope(t, rr)

			if tt.expectedErr != "" {
				assert.False(t, env.Success)
				assert.Equal(t, tt.expectedErr, errMsg(env))
				assert.Equal(t, "null", string(env.Data))
				return
			}

			assert.True(t, env.Success)
			assert.Nil(t, env.Error)

			var data map[string]any
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, "john_doe", data["username"])
			assert.Equal(t, "USD", data["preferred_currency"])
			assert.Contains(t, data, "last_login_at")
			assert.Nil(t, data["last_login_at"])
			assert.NotContains(t, data, "password")
			assert.NotContains(t, data, "password_hash")
		})
	}
}
