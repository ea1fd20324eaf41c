package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ericfisherdev/jobmatch/internal/domain/model"
	"github.com/ericfisherdev/jobmatch/internal/domain/port/driven"
)

// Credential store keys.
const (
	keyAPIKey    = "apiKey"
	keyUserEmail = "userEmail"
)

// Cache store keys.
const (
	keyCachedResume    = "cachedResume"
	keyResumeCacheTime = "resumeCacheTime" // Unix milliseconds.
	keyCredits         = "credits"
	keyLastEvaluation  = "lastEvaluation"
	keyEvaluationStats = "evaluationStats"
	keyAuthToken       = "authToken"
)

// storageErr tags a store failure so it reaches the caller as StorageFailure.
func storageErr(op string, err error) error {
	return model.Wrap(model.ErrStorageFailure, "", fmt.Errorf("%s: %w", op, err))
}

// loadCredential returns the stored credential. ok is false when no API key is stored.
func loadCredential(ctx context.Context, store driven.CredentialStore) (cred model.Credential, ok bool, err error) {
	values, err := store.Get(ctx, keyAPIKey, keyUserEmail)
	if err != nil {
		return model.Credential{}, false, storageErr("load credential", err)
	}
	apiKey := values[keyAPIKey]
	if apiKey == "" {
		return model.Credential{}, false, nil
	}
	return model.Credential{APIKey: apiKey, Email: values[keyUserEmail]}, true, nil
}

func saveCredential(ctx context.Context, store driven.CredentialStore, cred model.Credential) error {
	err := store.Set(ctx, map[string]string{
		keyAPIKey:    cred.APIKey,
		keyUserEmail: cred.Email,
	})
	if err != nil {
		return storageErr("save credential", err)
	}
	return nil
}

func clearCredential(ctx context.Context, store driven.CredentialStore) error {
	if err := store.Remove(ctx, keyAPIKey, keyUserEmail); err != nil {
		return storageErr("clear credential", err)
	}
	return nil
}

// loadCachedResume returns the cached résumé. A missing or unparsable entry
// yields a zero CachedResume, which is never fresh.
func loadCachedResume(ctx context.Context, cache driven.CacheStore) (model.CachedResume, error) {
	values, err := cache.Get(ctx, keyCachedResume, keyResumeCacheTime)
	if err != nil {
		return model.CachedResume{}, storageErr("load cached resume", err)
	}
	millis, err := strconv.ParseInt(values[keyResumeCacheTime], 10, 64)
	if err != nil {
		return model.CachedResume{}, nil
	}
	return model.CachedResume{
		Text:      values[keyCachedResume],
		FetchedAt: time.UnixMilli(millis),
	}, nil
}

func saveCachedResume(ctx context.Context, cache driven.CacheStore, resume model.CachedResume) error {
	err := cache.Set(ctx, map[string]string{
		keyCachedResume:    resume.Text,
		keyResumeCacheTime: strconv.FormatInt(resume.FetchedAt.UnixMilli(), 10),
	})
	if err != nil {
		return storageErr("save cached resume", err)
	}
	return nil
}

func clearCachedResume(ctx context.Context, cache driven.CacheStore) error {
	if err := cache.Remove(ctx, keyCachedResume, keyResumeCacheTime); err != nil {
		return storageErr("clear cached resume", err)
	}
	return nil
}

// loadCachedCredits returns the last cached balance, or 0 when none is stored.
func loadCachedCredits(ctx context.Context, cache driven.CacheStore) (int, error) {
	values, err := cache.Get(ctx, keyCredits)
	if err != nil {
		return 0, storageErr("load cached credits", err)
	}
	credits, err := strconv.Atoi(values[keyCredits])
	if err != nil {
		return 0, nil
	}
	return credits, nil
}

func saveCachedCredits(ctx context.Context, cache driven.CacheStore, credits int) error {
	if err := cache.Set(ctx, map[string]string{keyCredits: strconv.Itoa(credits)}); err != nil {
		return storageErr("save cached credits", err)
	}
	return nil
}

func saveLastEvaluation(ctx context.Context, cache driven.CacheStore, last model.LastEvaluation) error {
	data, err := json.Marshal(last)
	if err != nil {
		return fmt.Errorf("encode last evaluation: %w", err)
	}
	if err := cache.Set(ctx, map[string]string{keyLastEvaluation: string(data)}); err != nil {
		return storageErr("save last evaluation", err)
	}
	return nil
}

// loadStats returns the stored daily counter; a missing or corrupt entry is a zero value.
func loadStats(ctx context.Context, cache driven.CacheStore) (model.EvaluationStats, error) {
	values, err := cache.Get(ctx, keyEvaluationStats)
	if err != nil {
		return model.EvaluationStats{}, storageErr("load evaluation stats", err)
	}
	var stats model.EvaluationStats
	if raw, ok := values[keyEvaluationStats]; ok {
		if err := json.Unmarshal([]byte(raw), &stats); err != nil {
			slog.Debug("discarding unreadable evaluation stats", "error", err)
			stats = model.EvaluationStats{}
		}
	}
	return stats, nil
}

func saveStats(ctx context.Context, cache driven.CacheStore, stats model.EvaluationStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode evaluation stats: %w", err)
	}
	if err := cache.Set(ctx, map[string]string{keyEvaluationStats: string(data)}); err != nil {
		return storageErr("save evaluation stats", err)
	}
	return nil
}
