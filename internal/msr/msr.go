// Package msr implements X_MS_MediaReceiverRegistrar:1 (spec §4.I): the
// three fixed actions Xbox 360 and some other clients probe for before
// trusting a DLNA server.
package msr

import "github.com/dlnasrv/dlna/upnp"

const (
	ServiceType = "urn:microsoft.com:service:X_MS_MediaReceiverRegistrar:1"
	ServiceID   = "urn:microsoft.com:serviceId:X_MS_MediaReceiverRegistrar"
)

type ActionFunc func(args map[string]string) (map[string]string, error)

// Service always authorizes and never actually tracks registrations (spec
// §4.I: "clients are always authorized").
type Service struct{}

func (Service) Handlers() map[string]ActionFunc {
	return map[string]ActionFunc{
		"IsAuthorized":    isAuthorized,
		"RegisterDevice":  registerDevice,
		"IsValidated":     isValidated,
	}
}

func isAuthorized(map[string]string) (map[string]string, error) {
	return map[string]string{"Result": "1"}, nil
}

func registerDevice(map[string]string) (map[string]string, error) {
	return map[string]string{"RegistrationRespMsg": ""}, nil
}

func isValidated(map[string]string) (map[string]string, error) {
	return map[string]string{"Result": "1"}, nil
}

func Actions() []upnp.Action {
	return []upnp.Action{
		{Name: "IsAuthorized", Arguments: []upnp.Argument{
			{Name: "DeviceID", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_DeviceID"},
			{Name: "Result", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_Result"},
		}},
		{Name: "RegisterDevice", Arguments: []upnp.Argument{
			{Name: "RegistrationReqMsg", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_RegistrationReqMsg"},
			{Name: "RegistrationRespMsg", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_RegistrationRespMsg"},
		}},
		{Name: "IsValidated", Arguments: []upnp.Argument{
			{Name: "DeviceID", Direction: "in", RelatedStateVariable: "A_ARG_TYPE_DeviceID"},
			{Name: "Result", Direction: "out", RelatedStateVariable: "A_ARG_TYPE_Result"},
		}},
	}
}

func StateVariables() []upnp.StateVariable {
	return []upnp.StateVariable{
		{Name: "A_ARG_TYPE_DeviceID", DataType: "string"},
		{Name: "A_ARG_TYPE_RegistrationReqMsg", DataType: "bin.base64"},
		{Name: "A_ARG_TYPE_RegistrationRespMsg", DataType: "bin.base64"},
		{Name: "A_ARG_TYPE_Result", DataType: "i4"},
	}
}
