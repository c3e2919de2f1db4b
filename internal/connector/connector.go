package connector

import (
	"context"
	"errors"
	"net"

	"google.golang.org/api/googleapi"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
)

// Connector fetches raw items from one external source. Fetch never persists
// anything; it returns the flattened batch for the selector or an error.
type Connector interface {
	SourceType() sourcedomain.SourceType
	Fetch(ctx context.Context, cred *sourcedomain.Credential, sel syncdomain.Selector) ([]syncdomain.RawItem, error)
}

// Registry maps source types to connectors.
type Registry map[sourcedomain.SourceType]Connector

func NewRegistry(connectors ...Connector) Registry {
	reg := make(Registry, len(connectors))
	for _, c := range connectors {
		reg[c.SourceType()] = c
	}
	return reg
}

func (r Registry) Get(sourceType sourcedomain.SourceType) (Connector, error) {
	c, ok := r[sourceType]
	if !ok {
		return nil, syncdomain.ErrUnknownSource
	}
	return c, nil
}

// classifyGoogleError maps Google API failures onto the error taxonomy:
// auth failures surface as expired credentials, rate limits and server
// errors as transient, everything else passes through unchanged.
func classifyGoogleError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == 401:
			return sourcedomain.ErrCredentialExpired
		case gerr.Code == 429 || gerr.Code >= 500:
			return syncdomain.Transient(err)
		}
		return err
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return syncdomain.Transient(err)
	}
	return err
}
