package main

import (
	"comicApi/models"
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
)

func TestGetUserPreferencesDefaults(t *testing.T) {
	setupTestDB(t)

	res, err := GetUserPreferences(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetUserPreferences failed: %v", err)
	}

	if res.Language != "en" {
		t.Errorf("Expected default language en, got %q", res.Language)
	}
	if res.FavoriteComics == nil || len(res.FavoriteComics) != 0 {
		t.Errorf("Expected an empty favorites list, got %#v", res.FavoriteComics)
	}
}

func TestGetUserPreferencesCombinesRows(t *testing.T) {
	db := setupTestDB(t)
	insertPreferences(t, db, "alice", "de")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	insertComicView(t, db, "alice", "303", base)
	insertComicView(t, db, "alice", "927", base.Add(time.Hour))
	insertComicView(t, db, "bob", "1", base)

	res, err := GetUserPreferences(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserPreferences failed: %v", err)
	}

	if res.Language != "de" {
		t.Errorf("Expected language de, got %q", res.Language)
	}
	if len(res.FavoriteComics) != 2 || res.FavoriteComics[0] != "303" || res.FavoriteComics[1] != "927" {
		t.Errorf("Expected favorites [303 927], got %v", res.FavoriteComics)
	}
}

func TestGetUserPreferencesFavoritesWithoutPreferenceRow(t *testing.T) {
	db := setupTestDB(t)
	insertComicView(t, db, "carol", "149", time.Now())

	res, err := GetUserPreferences(context.Background(), "carol")
	if err != nil {
		t.Fatalf("GetUserPreferences failed: %v", err)
	}

	if res.Language != "en" || len(res.FavoriteComics) != 1 || res.FavoriteComics[0] != "149" {
		t.Errorf("Unexpected preferences: %+v", res)
	}
}

func TestSetLanguagePreferenceIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	insertPreferences(t, db, "existing", "en")

	for _, userId := range []string{"existing", "fresh"} {
		for i := 0; i < 2; i++ {
			res, err := SetLanguagePreference(context.Background(), userId, "fr")
			if err != nil {
				t.Fatalf("SetLanguagePreference(%s) call %d failed: %v", userId, i, err)
			}
			if !res.Success || res.Message != "Language preference updated successfully." {
				t.Errorf("Unexpected response: %+v", res)
			}
		}

		var rows []models.Preferences
		db.Where("user_id = ?", userId).Find(&rows)
		if len(rows) != 1 || rows[0].Language != "fr" {
			t.Errorf("Expected a single fr row for %s, got %+v", userId, rows)
		}
	}
}

func TestSetLanguagePreferenceLosesInsertRace(t *testing.T) {
	db := setupTestDB(t)

	// Another request creates the row right after the lookup misses.
	raced := false
	err := db.Callback().Query().After("gorm:query").Register("test:insert_preferences", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != "preferences" || !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return
		}

		raced = true
		insertPreferences(t, db, "racer", "de")
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	res, err := SetLanguagePreference(context.Background(), "racer", "fr")
	if err != nil {
		t.Fatalf("Expected the lost insert to become an update, got %v", err)
	}
	if !raced {
		t.Fatal("Expected the concurrent insert to have happened")
	}
	if !res.Success {
		t.Errorf("Unexpected response: %+v", res)
	}

	var rows []models.Preferences
	db.Where("user_id = ?", "racer").Find(&rows)
	if len(rows) != 1 || rows[0].Language != "fr" {
		t.Errorf("Expected a single fr row, got %+v", rows)
	}
}

func TestUpdateUserPreferencesMissingUser(t *testing.T) {
	db := setupTestDB(t)

	res, err := UpdateUserPreferences(context.Background(), "ghost", "es", []string{"1"})
	if err != nil {
		t.Fatalf("UpdateUserPreferences failed: %v", err)
	}

	if res.Success {
		t.Error("Expected success false for a missing user")
	}
	if res.UpdatedPreferences != nil {
		t.Errorf("Expected updated_preferences to be unset, got %+v", res.UpdatedPreferences)
	}

	var count int64
	db.Model(&models.Preferences{}).Where("user_id = ?", "ghost").Count(&count)
	if count != 0 {
		t.Errorf("Expected no row to be created, got %d", count)
	}
}

// The favorites list is echoed back but not stored.
func TestUpdateUserPreferencesEchoesButDoesNotStoreFavorites(t *testing.T) {
	db := setupTestDB(t)
	insertPreferences(t, db, "dave", "en")

	res, err := UpdateUserPreferences(context.Background(), "dave", "ja", []string{"353", "1053"})
	if err != nil {
		t.Fatalf("UpdateUserPreferences failed: %v", err)
	}

	if !res.Success || res.UpdatedPreferences == nil {
		t.Fatalf("Expected success with updated preferences, got %+v", res)
	}
	if res.UpdatedPreferences.Language != "ja" {
		t.Errorf("Expected language ja, got %q", res.UpdatedPreferences.Language)
	}
	if len(res.UpdatedPreferences.FavoriteComics) != 2 || res.UpdatedPreferences.FavoriteComics[1] != "1053" {
		t.Errorf("Expected favorites to be echoed, got %v", res.UpdatedPreferences.FavoriteComics)
	}

	read, err := GetUserPreferences(context.Background(), "dave")
	if err != nil {
		t.Fatalf("GetUserPreferences failed: %v", err)
	}
	if read.Language != "ja" {
		t.Errorf("Expected stored language ja, got %q", read.Language)
	}
	if len(read.FavoriteComics) != 0 {
		t.Errorf("Expected favorites not to be persisted, got %v", read.FavoriteComics)
	}
}
