package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"starwarsapi/internal/models"
)

var errFavoriteMissing = errors.New("favorite missing")

const favoriteColumns = `id, user_id, character_id, planet_id, created_at`

// targetColumn names the column that holds the id for the target's kind.
func targetColumn(target models.Target) (string, error) {
	switch target.Kind() {
	case models.KindCharacter:
		return "character_id", nil
	case models.KindPlanet:
		return "planet_id", nil
	}
	return "", models.ErrInvalidTarget
}

func scanFavorite(row rowScanner) (models.Favorite, error) {
	var (
		fav         models.Favorite
		characterID sql.NullInt64
		planetID    sql.NullInt64
	)
	if err := row.Scan(&fav.ID, &fav.UserID, &characterID, &planetID, &fav.CreatedAt); err != nil {
		return models.Favorite{}, err
	}
	target, err := models.TargetFromColumns(characterID, planetID)
	if err != nil {
		return models.Favorite{}, fmt.Errorf("decode favorite %d: %w", fav.ID, err)
	}
	fav.Target = target
	return fav, nil
}

// AddFavorite stores a favorite for the user unless one already exists for
// the same target. The boolean reports whether a new row was created; when it
// is false the existing favorite is returned.
func (s *Store) AddFavorite(ctx context.Context, userID int64, target models.Target) (models.Favorite, bool, error) {
	if !target.Valid() {
		return models.Favorite{}, false, models.ErrInvalidTarget
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Favorite{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	fav, err := findFavorite(ctx, tx, userID, target)
	switch {
	case err == nil:
		if err := tx.Commit(); err != nil {
			return models.Favorite{}, false, fmt.Errorf("commit tx: %w", err)
		}
		tx = nil
		return fav, false, nil
	case !errors.Is(err, errFavoriteMissing):
		return models.Favorite{}, false, err
	}

	characterID, planetID := target.Columns()
	fav = models.Favorite{UserID: userID, Target: target}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO favorites (user_id, character_id, planet_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at
	`, userID, characterID, planetID).Scan(&fav.ID, &fav.CreatedAt)
	created := true
	if errors.Is(err, sql.ErrNoRows) {
		// A concurrent writer committed the same favorite after our lookup.
		created = false
		fav, err = findFavorite(ctx, tx, userID, target)
	}
	if err != nil {
		return models.Favorite{}, false, fmt.Errorf("insert favorite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Favorite{}, false, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return fav, created, nil
}

// RemoveFavorite deletes the user's favorite for target. The lookup is always
// scoped by user, so another user's favorite is never affected. The boolean
// reports whether a row was deleted.
func (s *Store) RemoveFavorite(ctx context.Context, userID int64, target models.Target) (bool, error) {
	column, err := targetColumn(target)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites
		WHERE user_id = $1 AND `+column+` = $2`, userID, target.ID())
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// FavoritesByUser returns all favorites owned by the user, oldest first.
func (s *Store) FavoritesByUser(ctx context.Context, userID int64) ([]models.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+favoriteColumns+`
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return favorites, nil
}

// IsFavorite checks if the target is favorited by the user.
func (s *Store) IsFavorite(ctx context.Context, userID int64, target models.Target) (bool, error) {
	column, err := targetColumn(target)
	if err != nil {
		return false, err
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND `+column+` = $2)
	`, userID, target.ID()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}

func findFavorite(ctx context.Context, tx *sql.Tx, userID int64, target models.Target) (models.Favorite, error) {
	column, err := targetColumn(target)
	if err != nil {
		return models.Favorite{}, err
	}

	fav, err := scanFavorite(tx.QueryRowContext(ctx, `
		SELECT `+favoriteColumns+`
		FROM favorites
		WHERE user_id = $1 AND `+column+` = $2`, userID, target.ID()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Favorite{}, errFavoriteMissing
		}
		return models.Favorite{}, fmt.Errorf("select favorite: %w", err)
	}
	return fav, nil
}
