package main

import (
	"comicApi/models"
	"context"
	"errors"

	"gorm.io/gorm"
)

func GetUserPreferences(ctx context.Context, userId string) (*UserPreferencesResponse, error) {
	var p models.Preferences
	var views []models.ComicView

	db := DatabaseConnection.WithContext(ctx)

	language := models.DefaultLanguage

	tx := db.Where("user_id = ?", userId).First(&p)
	if tx.Error == nil {
		language = p.Language
	} else if !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, tx.Error
	}

	tx = db.Where("user_id = ?", userId).Order("created_at ASC").Find(&views)
	if tx.Error != nil {
		return nil, tx.Error
	}

	favorites := make([]string, 0, len(views))
	for _, v := range views {
		favorites = append(favorites, v.ComicId)
	}

	return &UserPreferencesResponse{
		Language:       language,
		FavoriteComics: favorites,
	}, nil
}

// SetLanguagePreference updates the user's language, creating the preference
// row on first use.
func SetLanguagePreference(ctx context.Context, userId string, language string) (*SetLanguagePreferenceResponse, error) {
	var p models.Preferences

	db := DatabaseConnection.WithContext(ctx)

	tx := db.Where("user_id = ?", userId).First(&p)

	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		p = models.Preferences{
			UserId:   userId,
			Language: language,
		}

		tx = db.Create(&p)

		// Lost an insert race against another request for the same user.
		if isUniqueViolation(tx.Error) {
			tx = db.Model(&models.Preferences{}).Where("user_id = ?", userId).Update("language", language)
		}
	} else if tx.Error == nil {
		tx = db.Model(&p).Update("language", language)
	}

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &SetLanguagePreferenceResponse{
		Success: true,
		Message: "Language preference updated successfully.",
	}, nil
}

// UpdateUserPreferences only persists the language. The favorite comics are
// echoed back but never written.
func UpdateUserPreferences(ctx context.Context, userId string, language string, favoriteComics []string) (*UpdateUserPreferencesResponse, error) {
	var p models.Preferences

	db := DatabaseConnection.WithContext(ctx)

	tx := db.Where("user_id = ?", userId).First(&p)

	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return &UpdateUserPreferencesResponse{
			Success: false,
			Message: "User preferences could not be found for the provided userId.",
		}, nil
	} else if tx.Error != nil {
		return nil, tx.Error
	}

	if err := db.Model(&p).Update("language", language).Error; err != nil {
		return nil, err
	}

	if favoriteComics == nil {
		favoriteComics = []string{}
	}

	return &UpdateUserPreferencesResponse{
		Success: true,
		Message: "User preferences updated successfully.",
		UpdatedPreferences: &UserPreferences{
			Language:       language,
			FavoriteComics: favoriteComics,
		},
	}, nil
}
