// Package storagetest holds the ginkgo behaviors every storage.Driver must
// satisfy. Driver packages call DescribeDriver from their own suites.
package storagetest

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lokallens/lokallens/pkg/llm"
	"github.com/lokallens/lokallens/pkg/storage"
)

// NewTranscript builds a transcript completed at base+offset.
func NewTranscript(id string, base time.Time, offset time.Duration) *storage.Transcript {
	started := base.Add(offset)
	return &storage.Transcript{
		ID:        id,
		RequestID: "req-" + id,
		Provider:  "gemini",
		Model:     llm.DefaultModel,
		Turns: []llm.ConversationTurn{
			llm.NewUserTurn("Apa itu batik?"),
			llm.NewAssistantTurn("Kain bergambar khas Indonesia."),
			llm.NewUserTurn("Dari daerah mana?"),
		},
		Reply:       "Banyak daerah, misalnya Pekalongan dan Solo.",
		StartedAt:   started,
		CompletedAt: started.Add(1500 * time.Millisecond),
	}
}

// DescribeDriver registers the shared driver behaviors. newDriver is called
// before each spec and the returned driver is closed after it.
func DescribeDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
		base   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		driver = nil
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("Put and Get", func() {
		It("round-trips a transcript", func() {
			t := NewTranscript("t-1", base, 0)
			Expect(driver.Put(ctx, t)).To(Succeed())

			got, err := driver.Get(ctx, "t-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("t-1"))
			Expect(got.RequestID).To(Equal("req-t-1"))
			Expect(got.Provider).To(Equal("gemini"))
			Expect(got.Model).To(Equal(llm.DefaultModel))
			Expect(got.Turns).To(Equal(t.Turns))
			Expect(got.Reply).To(Equal(t.Reply))
			Expect(got.StartedAt.Equal(t.StartedAt)).To(BeTrue())
			Expect(got.Duration()).To(Equal(1500 * time.Millisecond))
		})

		It("keeps the first transcript stored under an ID", func() {
			first := NewTranscript("dup", base, 0)
			second := NewTranscript("dup", base, time.Minute)
			second.Reply = "berbeda"

			Expect(driver.Put(ctx, first)).To(Succeed())
			Expect(driver.Put(ctx, second)).To(Succeed())

			got, err := driver.Get(ctx, "dup")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Reply).To(Equal(first.Reply))
		})

		It("stores transcripts without turns", func() {
			t := NewTranscript("empty", base, 0)
			t.Turns = []llm.ConversationTurn{}
			Expect(driver.Put(ctx, t)).To(Succeed())

			got, err := driver.Get(ctx, "empty")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Turns).To(BeEmpty())
		})

		It("rejects nil transcripts", func() {
			Expect(driver.Put(ctx, nil)).To(MatchError(storage.ErrNilTranscript))
		})

		It("returns NotFoundError for unknown IDs", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(HaveOccurred())

			var notFound storage.NotFoundError
			Expect(err).To(BeAssignableToTypeOf(notFound))
			Expect(err.Error()).To(Equal("transcript not found: missing"))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i := range 5 {
				t := NewTranscript(fmt.Sprintf("t-%d", i), base, time.Duration(i)*time.Minute)
				Expect(driver.Put(ctx, t)).To(Succeed())
			}
		})

		It("returns every transcript newest first", func() {
			all, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(5))

			ids := make([]string, 0, len(all))
			for _, t := range all {
				ids = append(ids, t.ID)
			}
			Expect(ids).To(Equal([]string{"t-4", "t-3", "t-2", "t-1", "t-0"}))
		})

		It("honours the limit", func() {
			some, err := driver.List(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(some).To(HaveLen(2))
			Expect(some[0].ID).To(Equal("t-4"))
			Expect(some[1].ID).To(Equal("t-3"))
		})
	})
}
