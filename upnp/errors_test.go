package upnp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorfBuildsError(t *testing.T) {
	err := Errorf(NoSuchObjectErrorCode, "no such object %d", 42)
	assert.Equal(t, NoSuchObjectErrorCode, err.Code)
	assert.Equal(t, "no such object 42", err.Description)
	assert.Contains(t, err.Error(), "701")
}

func TestConvertErrorPassesThroughUPnPError(t *testing.T) {
	original := Errorf(InvalidInstanceIDErrorCode, "bad instance")
	converted := ConvertError(original)
	assert.Equal(t, original, converted)
}

func TestConvertErrorWrapsPlainError(t *testing.T) {
	converted := ConvertError(errors.New("boom"))
	assert.Equal(t, ActionFailedErrorCode, converted.Code)
	assert.Contains(t, converted.Description, "boom")
}

func TestConvertErrorUnwrapsWrappedUPnPError(t *testing.T) {
	original := Errorf(CantProcessRequestErrorCode, "bad request")
	wrapped := errors.Join(original)
	converted := ConvertError(wrapped)
	assert.Equal(t, CantProcessRequestErrorCode, converted.Code)
}
