package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/hvbr1s/fordefi-raw-calls/internal/config"
	"github.com/hvbr1s/fordefi-raw-calls/internal/crypto"
	"github.com/hvbr1s/fordefi-raw-calls/internal/keystore"
	vaultsdk "github.com/hvbr1s/fordefi-raw-calls/sdk"
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageConfigure Stage = "configure"
	StageBuild     Stage = "build"
	StageSign      Stage = "sign"
	StageSubmit    Stage = "submit"
)

// Kind classifies a failure.
type Kind string

const (
	KindConfigurationMissing Kind = "ConfigurationMissing"
	KindKeyUnavailable       Kind = "KeyUnavailable"
	KindSigningFailure       Kind = "SigningFailure"
	KindSubmissionFailure    Kind = "SubmissionFailure"
	KindNetworkError         Kind = "NetworkError"

	// KindCanceled reports that the caller's context ended the submission.
	KindCanceled Kind = "Canceled"
)

// Error is the single failure value returned by the pipeline.
type Error struct {
	Stage Stage
	Kind  Kind
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or "" if err did not come from
// the pipeline.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// StatusCode returns the HTTP status of a SubmissionFailure, or 0.
func (e *Error) StatusCode() int {
	var apiErr *vaultsdk.Error
	if errors.As(e.Err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func configError(err error) *Error {
	if !errors.Is(err, config.ErrConfigurationMissing) {
		err = fmt.Errorf("%w: %w", config.ErrConfigurationMissing, err)
	}
	return &Error{Stage: StageConfigure, Kind: KindConfigurationMissing, Err: err}
}

func signError(ctx context.Context, err error) *Error {
	if ctx.Err() != nil && isContextError(err) {
		return &Error{Stage: StageSign, Kind: KindCanceled, Err: err}
	}
	kind := KindSigningFailure
	if errors.Is(err, keystore.ErrKeyUnavailable) && !errors.Is(err, crypto.ErrSigningFailure) {
		kind = KindKeyUnavailable
	}
	return &Error{Stage: StageSign, Kind: kind, Err: err}
}

func submitError(ctx context.Context, err error) *Error {
	if ctx.Err() != nil && isContextError(err) {
		return &Error{Stage: StageSubmit, Kind: KindCanceled, Err: err}
	}
	var netErr *vaultsdk.NetworkError
	if errors.As(err, &netErr) {
		return &Error{Stage: StageSubmit, Kind: KindNetworkError, Err: err}
	}
	return &Error{Stage: StageSubmit, Kind: KindSubmissionFailure, Err: err}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
