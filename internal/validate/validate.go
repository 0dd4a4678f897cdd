// Package validate checks request payloads against embedded JSON schemas
// before they are decoded into domain models.
package validate

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"

	"github.com/skillflow/skillflow/pkg/apperrors"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names accepted by Payload.
const (
	Department         = "department"
	Employee           = "employee"
	Training           = "training"
	Enrollment         = "enrollment"
	EnrollmentProgress = "enrollment_progress"
	Certification      = "certification"
	Login              = "login"
)

var (
	mu    sync.RWMutex
	cache = make(map[string]*jsonschema.Schema)
)

func load(name string) (*jsonschema.Schema, error) {
	mu.RLock()
	s, ok := cache[name]
	mu.RUnlock()
	if ok {
		return s, nil
	}

	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}

	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, rs); err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	mu.Lock()
	cache[name] = rs
	mu.Unlock()

	return rs, nil
}

// Payload validates a raw JSON body against the named schema. Schema
// violations come back wrapped in apperrors.ErrValidation so handlers can
// map them to 400 responses; any other error is an internal failure.
func Payload(ctx context.Context, name string, body []byte) error {
	rs, err := load(name)
	if err != nil {
		return err
	}

	keyErrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return fmt.Errorf("%w: malformed json: %v", apperrors.ErrValidation, err)
	}
	if len(keyErrs) > 0 {
		msgs := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			msgs = append(msgs, ke.Error())
		}

		return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(msgs, "; "))
	}

	return nil
}
