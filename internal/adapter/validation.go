package adapter

import (
	"fmt"

	"github.com/MKhiriev/go-cred-stash/models"
)

func validateKey(key models.Key) error {
	if err := key.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return nil
}

func validateEntity(entity models.Entity) error {
	if err := validateKey(entity.Key); err != nil {
		return err
	}
	if len(entity.Properties) == 0 {
		return fmt.Errorf("%w: entity %s has no properties", ErrInvalidArgument, entity.Key)
	}
	return nil
}

func validateKind(kind string) error {
	if kind == "" {
		return fmt.Errorf("%w: empty kind", ErrInvalidArgument)
	}
	return nil
}
