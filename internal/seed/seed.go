// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"porchlight/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumIdentities int
	NumComments   int
	NumSessions   int
	// MaxDays spreads comment timestamps over the given number of days
	// back from now.
	MaxDays int
}

func (o Options) withDefaults() Options {
	if o.NumIdentities <= 0 {
		o.NumIdentities = 15
	}
	if o.NumComments <= 0 {
		o.NumComments = 80
	}
	if o.NumSessions <= 0 {
		o.NumSessions = 40
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 90
	}
	return o
}

// identity is a fabricated visitor, standing in for an account at the
// external auth provider.
type identity struct {
	ID    string
	Name  string
	Email string
	Image string
}

// Seeder populates the database with plausible threads, reactions and
// presence sessions.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	return &Seeder{
		db:   db,
		opts: opts.withDefaults(),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// ClearAll removes all seeded rows. Reactions go first to keep the data
// consistent if a later delete fails.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"reactions", "comments", "presences"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run seeds comments across the given post slugs and the global guestbook,
// then sprinkles reactions and presence sessions on top.
func (s *Seeder) Run(postSlugs []string) error {
	identities := s.fabricateIdentities()

	roots, err := s.seedComments(identities, postSlugs)
	if err != nil {
		return fmt.Errorf("seed comments: %w", err)
	}
	if err := s.seedReplies(identities, roots); err != nil {
		return fmt.Errorf("seed replies: %w", err)
	}
	if err := s.seedReactions(identities); err != nil {
		return fmt.Errorf("seed reactions: %w", err)
	}
	if err := s.seedPresence(); err != nil {
		return fmt.Errorf("seed presence: %w", err)
	}
	return nil
}

func (s *Seeder) fabricateIdentities() []identity {
	identities := make([]identity, 0, s.opts.NumIdentities)
	for i := 0; i < s.opts.NumIdentities; i++ {
		id := identity{
			ID:    "usr_" + uuid.NewString(),
			Name:  gofakeit.Name(),
			Email: gofakeit.Email(),
		}
		// Some visitors have no avatar and some sign in without a
		// display name, matching what the auth provider hands over.
		if s.rng.Intn(4) > 0 {
			id.Image = fmt.Sprintf("https://picsum.photos/seed/%s/96/96", uuid.NewString())
		}
		if s.rng.Intn(10) == 0 {
			id.Name = ""
		}
		identities = append(identities, id)
	}
	return identities
}

// pastMillis returns a random timestamp within the configured window.
func (s *Seeder) pastMillis() int64 {
	back := time.Duration(s.rng.Intn(s.opts.MaxDays*24*60)) * time.Minute
	return time.Now().Add(-back).UnixMilli()
}

func (s *Seeder) comment(who identity, postSlug *string) *models.Comment {
	name := who.Name
	if name == "" {
		name = who.Email
	}
	return &models.Comment{
		PostSlug:  postSlug,
		UserID:    who.ID,
		UserName:  name,
		UserImage: who.Image,
		Content:   gofakeit.HipsterSentence(4 + s.rng.Intn(12)),
		CreatedAt: s.pastMillis(),
	}
}

func (s *Seeder) seedComments(identities []identity, postSlugs []string) ([]*models.Comment, error) {
	roots := make([]*models.Comment, 0, s.opts.NumComments)
	for i := 0; i < s.opts.NumComments; i++ {
		who := identities[s.rng.Intn(len(identities))]

		// Most chatter lands on posts; the rest goes to the guestbook.
		var postSlug *string
		if len(postSlugs) > 0 && s.rng.Intn(10) < 6 {
			slug := postSlugs[s.rng.Intn(len(postSlugs))]
			postSlug = &slug
		}

		roots = append(roots, s.comment(who, postSlug))
	}

	if err := s.db.CreateInBatches(roots, 100).Error; err != nil {
		return nil, err
	}
	return roots, nil
}

func (s *Seeder) seedReplies(identities []identity, roots []*models.Comment) error {
	for _, root := range roots {
		if s.rng.Intn(10) >= 3 {
			continue
		}

		n := 1 + s.rng.Intn(3)
		replies := make([]*models.Comment, 0, n)
		for i := 0; i < n; i++ {
			who := identities[s.rng.Intn(len(identities))]
			reply := s.comment(who, root.PostSlug)
			reply.ParentID = &root.ID
			// Replies always come after their parent.
			if reply.CreatedAt <= root.CreatedAt {
				reply.CreatedAt = root.CreatedAt + int64(1+s.rng.Intn(3_600_000))
			}
			replies = append(replies, reply)
		}

		if err := s.db.Create(replies).Error; err != nil {
			return err
		}
		if err := s.db.Model(root).UpdateColumn("reply_count", n).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedReactions(identities []identity) error {
	var comments []*models.Comment
	if err := s.db.Find(&comments).Error; err != nil {
		return err
	}

	var reactions []*models.Reaction
	for _, comment := range comments {
		reactors := lo.Samples(identities, s.rng.Intn(4))
		for _, who := range reactors {
			reactions = append(reactions, &models.Reaction{
				CommentID: comment.ID,
				UserID:    who.ID,
				Emoji:     models.ReactionEmojis[s.rng.Intn(len(models.ReactionEmojis))],
				CreatedAt: comment.CreatedAt + int64(1+s.rng.Intn(86_400_000)),
			})
		}
	}
	if len(reactions) == 0 {
		return nil
	}
	return s.db.CreateInBatches(reactions, 200).Error
}

func (s *Seeder) seedPresence() error {
	sessions := make([]*models.Presence, 0, s.opts.NumSessions)
	for i := 0; i < s.opts.NumSessions; i++ {
		lastSeen := time.Now().Add(-time.Duration(s.rng.Intn(7*24*60)) * time.Minute).UnixMilli()
		// Keep a handful of sessions inside the activity window so the
		// live counter has something to show.
		if i < 3 {
			lastSeen = time.Now().Add(-time.Duration(s.rng.Intn(20)) * time.Second).UnixMilli()
		}
		sessions = append(sessions, &models.Presence{
			SessionID: uuid.NewString(),
			LastSeen:  lastSeen,
		})
	}
	return s.db.CreateInBatches(sessions, 100).Error
}
