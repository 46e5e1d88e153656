package mongodb

import (
	"errors"

	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

// translateErr maps driver errors onto the repository sentinels.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrDuplicateKey
	}
	return err
}
