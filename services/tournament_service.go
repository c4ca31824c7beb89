package services

import (
	"errors"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"tournament-signup-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Join rejections. These are user-facing business rejections, not faults:
// handlers map them to 4xx responses and local state stays untouched.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentNotOpen  = errors.New("tournament is not open")
	ErrAlreadyJoined      = errors.New("user already joined this tournament")
	ErrTournamentFull     = errors.New("tournament is full")
	ErrMissingUser        = errors.New("user id required")
)

// Creation validation errors. All are caught before any store write.
var (
	ErrAllFieldsRequired       = errors.New("all fields are required")
	ErrMaxParticipantsInvalid  = errors.New("max participants must be a positive integer")
	ErrDateTimeFormat          = errors.New("invalid date (YYYY-MM-DD) or time (HH:MM) format")
	ErrDateTimeOutOfRange      = errors.New("invalid date or time")
	ErrDateInPast              = errors.New("tournament date cannot be in the past")
	ErrStatusTransitionInvalid = errors.New("invalid status transition")
	ErrStatusUnknown           = errors.New("unknown status")
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

type TournamentService struct {
	Store *Store
}

func NewTournamentService(store *Store) *TournamentService {
	return &TournamentService{Store: store}
}

// CreateTournamentInput carries caller-supplied creation fields.
// MaxParticipants, Date and Time arrive as strings straight from the form.
// Status and Participants are accepted but ignored: creation always forces
// them server-side so a caller cannot fabricate a pre-populated or
// pre-closed tournament.
type CreateTournamentInput struct {
	Name            string   `json:"name"`
	GameName        string   `json:"gameName"`
	MaxParticipants string   `json:"maxParticipants"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	Status          string   `json:"status,omitempty"`
	Participants    []string `json:"participants,omitempty"`
}

// ValidateCreateTournament runs every creation check against now and
// returns the parsed cap and start time. Checks, in order: all fields
// present, positive integer cap, strict date/time patterns, component
// ranges (month 1–12, day 1–31, hour 0–23, minute 0–59), and a start
// strictly in the future.
func ValidateCreateTournament(in CreateTournamentInput, now time.Time) (int, time.Time, error) {
	if in.Name == "" || in.GameName == "" || in.MaxParticipants == "" || in.Date == "" || in.Time == "" {
		return 0, time.Time{}, ErrAllFieldsRequired
	}

	maxParticipants, err := strconv.Atoi(in.MaxParticipants)
	if err != nil || maxParticipants <= 0 {
		return 0, time.Time{}, ErrMaxParticipantsInvalid
	}

	if !dateRe.MatchString(in.Date) || !timeRe.MatchString(in.Time) {
		return 0, time.Time{}, ErrDateTimeFormat
	}

	dateParts := strings.Split(in.Date, "-")
	year, _ := strconv.Atoi(dateParts[0])
	month, _ := strconv.Atoi(dateParts[1])
	day, _ := strconv.Atoi(dateParts[2])

	timeParts := strings.Split(in.Time, ":")
	hour, _ := strconv.Atoi(timeParts[0])
	minute, _ := strconv.Atoi(timeParts[1])

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return 0, time.Time{}, ErrDateTimeOutOfRange
	}

	start := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	if !start.After(now) {
		return 0, time.Time{}, ErrDateInPast
	}
	return maxParticipants, start, nil
}

// newTournamentDocument builds the document a creation request inserts.
// Status and participants come from the server, never from the input.
func newTournamentDocument(in CreateTournamentInput, creatorUID string, maxParticipants int, start time.Time) *models.Tournament {
	return &models.Tournament{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Slug:            slug.Make(in.Name),
		GameName:        in.GameName,
		MaxParticipants: maxParticipants,
		Date:            start,
		CreatorUID:      creatorUID,
		// Forced regardless of caller-supplied values.
		Participants: pq.StringArray{},
		Status:       models.StatusOpen,
	}
}

// Create validates the input and inserts the tournament with status and
// participants forced to their server-side defaults.
func (s *TournamentService) Create(in CreateTournamentInput, creatorUID string) (*models.Tournament, error) {
	maxParticipants, start, err := ValidateCreateTournament(in, time.Now())
	if err != nil {
		return nil, err
	}
	t := newTournamentDocument(in, creatorUID, maxParticipants, start)
	if err := s.Store.CreateTournament(t); err != nil {
		return nil, err
	}
	return t, nil
}

// CheckJoinPreconditions validates a join against the given snapshot of the
// tournament. The snapshot may be stale: two callers that each observe one
// remaining slot both pass, and the store-level add-if-absent update does
// not re-check capacity, so concurrent joins can overshoot MaxParticipants
// by the number of racing callers. This is a known, accepted weakness of
// the read-then-write design; duplicates are impossible either way.
func CheckJoinPreconditions(t *models.Tournament, uid string) error {
	if uid == "" {
		return ErrMissingUser
	}
	if t == nil {
		return ErrTournamentNotFound
	}
	if !t.IsOpen() {
		return ErrTournamentNotOpen
	}
	if t.HasParticipant(uid) {
		return ErrAlreadyJoined
	}
	if t.IsFull() {
		return ErrTournamentFull
	}
	return nil
}

// Join adds uid to the tournament after the precondition checks pass. On
// success the returned tournament is the caller's local view extended with
// the new participant — no mandatory re-fetch.
func (s *TournamentService) Join(tournamentID, uid string) (*models.Tournament, error) {
	t, err := s.Store.GetTournamentByID(tournamentID)
	if err != nil {
		return nil, err
	}
	if err := CheckJoinPreconditions(t, uid); err != nil {
		return nil, err
	}
	if err := s.Store.AddParticipant(t.ID, uid); err != nil {
		return nil, err
	}
	t.Participants = append(t.Participants, uid)
	return t, nil
}

// Participants resolves the tournament's participant uids to profile
// documents, batched at the store's IN-filter cap, ordered by last then
// first name under Spanish collation. An empty list issues no query.
func (s *TournamentService) Participants(t *models.Tournament) ([]models.User, error) {
	users, err := s.Store.GetUsersByIDs([]string(t.Participants))
	if err != nil {
		return nil, err
	}
	sortParticipants(users)
	return users, nil
}

func sortParticipants(users []models.User) {
	c := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(users, func(i, j int) bool {
		if r := c.CompareString(users[i].LastName, users[j].LastName); r != 0 {
			return r < 0
		}
		return c.CompareString(users[i].FirstName, users[j].FirstName) < 0
	})
}

// UpdateStatus moves a tournament to the next status. Transitions are
// monotonic; going backwards is rejected.
func (s *TournamentService) UpdateStatus(tournamentID, next string) (*models.Tournament, error) {
	if !models.ValidStatus(next) {
		return nil, ErrStatusUnknown
	}
	t, err := s.Store.GetTournamentByID(tournamentID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTournamentNotFound
	}
	if !models.CanTransition(t.Status, next) {
		return nil, ErrStatusTransitionInvalid
	}
	if err := s.Store.SetTournamentStatus(t.ID, next); err != nil {
		return nil, err
	}
	t.Status = next
	return t, nil
}

// --- Fiber handlers ---

func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	isAdmin, _ := c.Locals("is_admin").(bool)
	if !isAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "only admins can create tournaments"})
	}
	creatorUID, _ := c.Locals("user_id").(string)

	var in CreateTournamentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	t, err := s.Create(in, creatorUID)
	switch {
	case err == nil:
	case errors.Is(err, ErrAllFieldsRequired),
		errors.Is(err, ErrMaxParticipantsInvalid),
		errors.Is(err, ErrDateTimeFormat),
		errors.Is(err, ErrDateTimeOutOfRange),
		errors.Is(err, ErrDateInPast):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("❌ [TOURNAMENT] create failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create tournament"})
	}
	return c.Status(201).JSON(t)
}

func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	tournaments, err := s.Store.GetTournaments()
	if err != nil {
		log.Printf("❌ [TOURNAMENT] list failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournaments"})
	}
	return c.JSON(tournaments)
}

func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	t, err := s.Store.GetTournamentByID(c.Params("id"))
	if err != nil {
		log.Printf("❌ [TOURNAMENT] fetch failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournament"})
	}
	if t == nil {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}
	return c.JSON(t)
}

func (s *TournamentService) JoinTournament(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	// Soft gate, mirrored from the signup screens: admins organize, they
	// don't play.
	if isAdmin, _ := c.Locals("is_admin").(bool); isAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "admins cannot join tournaments"})
	}

	t, err := s.Join(c.Params("id"), uid)
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingUser):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrTournamentNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrAlreadyJoined):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrTournamentFull), errors.Is(err, ErrTournamentNotOpen):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("❌ [TOURNAMENT] join failed for %s: %v", uid, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to join tournament"})
	}
	return c.JSON(t)
}

func (s *TournamentService) GetTournamentParticipants(c *fiber.Ctx) error {
	t, err := s.Store.GetTournamentByID(c.Params("id"))
	if err != nil {
		log.Printf("❌ [TOURNAMENT] fetch failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch tournament"})
	}
	if t == nil {
		return c.Status(404).JSON(fiber.Map{"error": "tournament not found"})
	}

	users, err := s.Participants(t)
	if err != nil {
		log.Printf("❌ [TOURNAMENT] participants fetch failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch participants"})
	}

	isAdmin, _ := c.Locals("is_admin").(bool)
	views := make([]models.ParticipantView, 0, len(users))
	for _, u := range users {
		v := models.ParticipantView{
			UID:       u.UID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		}
		if isAdmin {
			v.Email = u.Email
			v.PhoneNumber = u.PhoneNumber
		}
		views = append(views, v)
	}
	return c.JSON(views)
}

func (s *TournamentService) UpdateTournamentStatus(c *fiber.Ctx) error {
	if isAdmin, _ := c.Locals("is_admin").(bool); !isAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "only admins can change tournament status"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	t, err := s.UpdateStatus(c.Params("id"), req.Status)
	switch {
	case err == nil:
	case errors.Is(err, ErrStatusUnknown), errors.Is(err, ErrStatusTransitionInvalid):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrTournamentNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("❌ [TOURNAMENT] status update failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update status"})
	}
	return c.JSON(t)
}
