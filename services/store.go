package services

import (
	"errors"

	"tournament-signup-system/models"

	"gorm.io/gorm"
)

// userBatchSize caps how many uids a single IN query may carry. Larger
// participant lists are fetched in successive batches.
const userBatchSize = 30

// Store is the document-style access layer over the users and tournaments
// tables: create, get-by-id, list-all, get-many-by-id-set and the
// add-to-array-if-absent participant update. It owns no business rules.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// --- User documents ---

func (s *Store) CreateUserDocument(user *models.User) error {
	return s.DB.Create(user).Error
}

// GetUserDocument returns nil with no error when the profile document does
// not exist — absence is a valid state, not a failure.
func (s *Store) GetUserDocument(uid string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// SetUserAdmin marks the profile document's admin flag. This is one half of
// the add-admin-role operation; the claim write happens separately.
func (s *Store) SetUserAdmin(uid string) error {
	res := s.DB.Model(&models.User{}).Where("uid = ?", uid).Update("is_admin", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetUsersByIDs fetches profile documents for a set of uids, batching the
// IN filter at userBatchSize per query. An empty set returns immediately
// without touching the database.
func (s *Store) GetUsersByIDs(uids []string) ([]models.User, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	var users []models.User
	for _, batch := range chunkIDs(uids, userBatchSize) {
		var part []models.User
		if err := s.DB.Where("uid IN ?", batch).Find(&part).Error; err != nil {
			return nil, err
		}
		users = append(users, part...)
	}
	return users, nil
}

// chunkIDs splits ids into slices of at most size elements.
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

// --- Tournament documents ---

func (s *Store) CreateTournament(t *models.Tournament) error {
	return s.DB.Create(t).Error
}

func (s *Store) GetTournaments() ([]models.Tournament, error) {
	var tournaments []models.Tournament
	if err := s.DB.Order("date ASC").Find(&tournaments).Error; err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (s *Store) GetTournamentByID(id string) (*models.Tournament, error) {
	var t models.Tournament
	if err := s.DB.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// AddParticipant appends uid to the tournament's participants array only if
// it is not already present, in one statement. This is the store's only
// concurrency primitive: it is idempotent and set-semantic, but it does not
// re-check MaxParticipants — capacity is enforced upstream against a
// possibly stale snapshot.
func (s *Store) AddParticipant(tournamentID, uid string) error {
	return s.DB.Exec(
		`UPDATE tournaments
		    SET participants = array_append(COALESCE(participants, '{}'), ?), updated_at = NOW()
		  WHERE id = ? AND NOT (? = ANY(COALESCE(participants, '{}')))`,
		uid, tournamentID, uid,
	).Error
}

func (s *Store) SetTournamentStatus(id, status string) error {
	return s.DB.Model(&models.Tournament{}).Where("id = ?", id).
		Update("status", status).Error
}

// DueOpenTournaments lists open tournaments whose start time has passed.
func (s *Store) DueOpenTournaments() ([]models.Tournament, error) {
	var due []models.Tournament
	err := s.DB.Where("status = ? AND date <= NOW()", models.StatusOpen).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	return due, nil
}
