package msr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSRAlwaysAuthorizes(t *testing.T) {
	s := Service{}
	h := s.Handlers()

	out, err := h["IsAuthorized"](map[string]string{"DeviceID": "anything"})
	require.NoError(t, err)
	assert.Equal(t, "1", out["Result"])

	out, err = h["IsValidated"](map[string]string{"DeviceID": "anything"})
	require.NoError(t, err)
	assert.Equal(t, "1", out["Result"])
}

func TestMSRRegisterDeviceSucceeds(t *testing.T) {
	s := Service{}
	h := s.Handlers()
	out, err := h["RegisterDevice"](map[string]string{"RegistrationReqMsg": "deadbeef"})
	require.NoError(t, err)
	assert.Equal(t, "", out["RegistrationRespMsg"])
}
