package upnp

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// ErrorCode is a UPnP action error code (the <errorCode> of a SOAP fault).
type ErrorCode int

// Common UPnP error codes (§4.F/§4.H tables), shared across services.
const (
	InvalidActionErrorCode        ErrorCode = 401
	InvalidArgsErrorCode          ErrorCode = 402
	ActionFailedErrorCode         ErrorCode = 501
	ArgumentValueInvalidErrorCode ErrorCode = 600

	// ContentDirectory-specific (§4.F).
	NoSuchObjectErrorCode       ErrorCode = 701
	InvalidSearchCriteriaErrorCode ErrorCode = 708
	InvalidSortCriteriaErrorCode   ErrorCode = 709
	InvalidContainerCode           ErrorCode = 710
	CantProcessRequestErrorCode    ErrorCode = 720

	// AVTransport-specific (§4.H); 701/710 are reused with different meaning
	// in CDS vs AVTS context, matching spec.md's own tables.
	TransitionNotAvailableErrorCode ErrorCode = 701
	NoContentsErrorCode             ErrorCode = 702
	NotImplementedErrorCode         ErrorCode = 710
	IllegalMimeTypeErrorCode        ErrorCode = 714
	InvalidInstanceIDErrorCode      ErrorCode = 718
	PlaySpeedNotSupportedErrorCode  ErrorCode = 717
)

// Error is a UPnP action error: a numeric code plus a human-readable
// description, matching <errorCode>/<errorDescription> of a SOAP fault.
type Error struct {
	Code        ErrorCode
	Description string
}

func (e Error) Error() string {
	return fmt.Sprintf("UPnPError %d: %s", e.Code, e.Description)
}

// MarshalXML renders the error as the <UPnPError> detail element.
func (e Error) MarshalXML(enc *xml.Encoder, start xml.StartElement) error {
	type xmlErr struct {
		XMLName     xml.Name `xml:"urn:schemas-upnp-org:control-1-0 UPnPError"`
		ErrorCode   int      `xml:"errorCode"`
		ErrorDesc   string   `xml:"errorDescription"`
	}
	return enc.Encode(xmlErr{ErrorCode: int(e.Code), ErrorDesc: e.Description})
}

// Errorf builds an Error with a formatted description.
func Errorf(code ErrorCode, format string, a ...any) Error {
	return Error{Code: code, Description: fmt.Sprintf(format, a...)}
}

// ConvertError converts any error into a upnp.Error, defaulting to 501
// Action Failed if it isn't already one (per §7's ActionError policy: the
// response body is omitted and ErrCode/ErrStr are filled instead).
func ConvertError(err error) Error {
	var uerr Error
	if errors.As(err, &uerr) {
		return uerr
	}
	return Errorf(ActionFailedErrorCode, "%s", err.Error())
}
