package dataapi

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/rdsdata/types"
	"github.com/aws/smithy-go"
)

type Class int

const (
	ClassOther Class = iota
	ClassBadRequest
	ClassDatabaseError
	ClassService
)

// Failure is a service error reduced to what the command layer reports.
type Failure struct {
	Class   Class
	Code    string
	Message string
}

// Classify inspects err for a Data API service error. Anything that did not
// come back from the service is ClassOther with the error text as message.
func Classify(err error) Failure {
	if err == nil {
		return Failure{}
	}

	var badRequest *types.BadRequestException
	if errors.As(err, &badRequest) {
		return Failure{Class: ClassBadRequest, Code: badRequest.ErrorCode(), Message: badRequest.ErrorMessage()}
	}

	var dbErr *types.DatabaseErrorException
	if errors.As(err, &dbErr) {
		return Failure{Class: ClassDatabaseError, Code: dbErr.ErrorCode(), Message: dbErr.ErrorMessage()}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return Failure{Class: ClassService, Code: apiErr.ErrorCode(), Message: apiErr.ErrorMessage()}
	}

	return Failure{Class: ClassOther, Message: err.Error()}
}
