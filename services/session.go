package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"support-bot/models"
)

const (
	SessionDuration   = 24 * time.Hour
	SessionCookieName = "session"
)

// GenerateSessionID generates a secure random session ID
func GenerateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CreateSession creates a new dashboard session for user
func CreateSession(ctx context.Context, user *models.User, ipAddress, userAgent string) (*models.Session, error) {
	sessionID, err := GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &models.Session{
		ID:           primitive.NewObjectID(),
		SessionID:    sessionID,
		UserID:       user.ID.Hex(),
		Email:        user.Email,
		Role:         string(user.Role),
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		CreatedAt:    now,
		LastAccessed: now,
		ExpiresAt:    now.Add(SessionDuration),
		IsActive:     true,
	}

	if _, err := GetDatabase().Collection(SessionsCollection).InsertOne(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSessionByID returns the active session or nil when it does not exist or expired
func GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	err := GetDatabase().Collection(SessionsCollection).FindOne(ctx, bson.M{
		"session_id": sessionID,
		"is_active":  true,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// ExtendSession pushes the expiration of an active session
func ExtendSession(ctx context.Context, sessionID string) error {
	now := time.Now()
	_, err := GetDatabase().Collection(SessionsCollection).UpdateOne(
		ctx,
		bson.M{"session_id": sessionID, "is_active": true},
		bson.M{"$set": bson.M{
			"last_accessed": now,
			"expires_at":    now.Add(SessionDuration),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to extend session: %w", err)
	}
	return nil
}

// DestroySession marks a session as inactive
func DestroySession(ctx context.Context, sessionID string) error {
	_, err := GetDatabase().Collection(SessionsCollection).UpdateOne(
		ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{
			"is_active":  false,
			"expires_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions deletes sessions that expired more than 7 days ago
func CleanupExpiredSessions(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-7 * 24 * time.Hour)

	result, err := GetDatabase().Collection(SessionsCollection).DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", err)
	}
	return result.DeletedCount, nil
}

// StartSessionCleanup removes expired sessions every interval until ctx is done
func StartSessionCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Session cleanup stopped")
				return
			case <-ticker.C:
				cleanupCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
				count, err := CleanupExpiredSessions(cleanupCtx)
				cancel()
				if err != nil {
					slog.Error("Failed to cleanup expired sessions", "error", err)
				} else if count > 0 {
					slog.Info("Cleaned up expired sessions", "count", count)
				}
			}
		}
	}()
}

// CreateSessionIndexes creates indexes for the sessions collection
func CreateSessionIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.M{"session_id": 1},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.M{"user_id": 1}},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "expires_at", Value: 1}}},
	}

	if _, err := GetDatabase().Collection(SessionsCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	return nil
}
