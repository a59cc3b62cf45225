package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quad400/kaydee-boutique/internal/domain"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type sessionRepository struct {
	coll *mongo.Collection
	log  *logrus.Logger
}

func NewSessionRepository(db *mongo.Database, logger *logrus.Logger) domain.SessionRepository {
	return &sessionRepository{
		coll: db.Collection(sessionsCollection),
		log:  logger,
	}
}

func (r *sessionRepository) ResolveSession(ctx context.Context, token string) (*domain.Principal, error) {
	filter := bson.D{
		{Key: "_id", Value: token},
		{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: time.Now().UTC()}}},
	}
	var doc sessionDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.Warn("Session token unknown or expired")
			return nil, domain.Unauthorizedf("invalid or expired token")
		}
		r.log.Errorf("Failed to resolve session: %v", err)
		return nil, fmt.Errorf("could not resolve session: %w", err)
	}
	return &domain.Principal{ID: doc.UserID, Role: domain.Role(doc.Role)}, nil
}
