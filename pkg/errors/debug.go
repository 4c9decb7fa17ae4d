package errors

// ErrorDump flattens an error chain into loggable fields.
type ErrorDump struct {
	Code       string
	TopMessage string
	Chain      []string
}

// Dump walks the unwrap chain and collects each message for structured logs.
func Dump(err error) ErrorDump {
	dump := ErrorDump{}
	if err == nil {
		return dump
	}
	dump.TopMessage = err.Error()
	if typed := As(err); typed != nil {
		dump.Code = string(typed.Code())
	}
	for current := err; current != nil; {
		dump.Chain = append(dump.Chain, current.Error())
		unwrapper, ok := current.(interface{ Unwrap() error })
		if !ok {
			break
		}
		current = unwrapper.Unwrap()
	}
	return dump
}
