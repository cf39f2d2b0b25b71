package boardarch

import (
	"reflect"
	"sort"
	"strconv"
	"time"
)

// The merge functions reconcile freshly scraped data with previously stored
// documents. They are pure bookkeeping: no I/O, no errors, no clock reads.
// Callers must only pass data from a successful fetch+extract: a failed
// fetch carries no information and must not reach a merge (an empty fresh
// batch from a render failure is not the same as a topic with zero posts).

// MergeBoardInfo returns the board document that should be persisted after a
// crawl attempt. A successful fetch replaces the stored document wholesale;
// a failed fetch (nil fresh) preserves the existing document unchanged.
func MergeBoardInfo(existing, fresh *Board) *Board {
	if fresh == nil {
		return existing
	}
	return fresh
}

// MergeTopicsIndex folds fresh topic summaries into the index and returns
// the ids of topics that were inserted or updated, in input order. The
// changed set drives selective post fetching: an unchanged summary means the
// topic has no new posts worth re-crawling.
//
// Entries are never deleted. A fresh summary whose parsed last-post
// timestamp is strictly older than the stored one is stale data (e.g., a
// listing page cached mid-run) and is discarded. Summaries that fail
// validation are dropped rather than propagated as partial data.
func MergeTopicsIndex(existing *TopicsIndex, fresh []TopicSummary) []string {
	if existing.Topics == nil {
		existing.Topics = make(map[string]*TopicSummary)
	}

	var changed []string
	for i := range fresh {
		s := fresh[i]
		if s.Validate() != nil {
			continue
		}

		cur, ok := existing.Topics[s.ID]
		if !ok {
			cp := s
			existing.Topics[s.ID] = &cp
			changed = append(changed, s.ID)
			continue
		}
		if staleSummary(cur, &s) {
			continue
		}
		if !summaryChanged(*cur, s) {
			continue
		}
		cp := s
		existing.Topics[s.ID] = &cp
		changed = append(changed, s.ID)
	}
	return changed
}

// staleSummary reports whether fresh represents an older state than cur.
// The check requires parsed timestamps on both sides; forums render
// relative dates that do not always parse, in which case last write wins.
func staleSummary(cur, fresh *TopicSummary) bool {
	if cur.LastPostAt.IsZero() || fresh.LastPostAt.IsZero() {
		return false
	}
	return fresh.LastPostAt.Before(cur.LastPostAt)
}

// summaryChanged compares two summaries field-by-field, ignoring the
// fetched-at stamp so that an otherwise identical re-scrape does not force
// a rewrite.
func summaryChanged(old, fresh TopicSummary) bool {
	old.FetchedAt, fresh.FetchedAt = time.Time{}, time.Time{}
	return !reflect.DeepEqual(old, fresh)
}

// MergeTopicPosts folds a fresh batch of posts into the archive and reports
// whether the archive changed and requires persistence. New post ids are
// inserted; known ids are overwritten only when a scraped field actually
// differs. Posts absent from the fresh batch (pagination cap, partial run)
// are always preserved. After any insertion the post list is re-sorted into
// forum order, so an out-of-order batch cannot corrupt the ordering.
func MergeTopicPosts(archive *TopicArchive, fresh []Post) bool {
	byID := make(map[string]int, len(archive.Posts))
	for i := range archive.Posts {
		byID[archive.Posts[i].ID] = i
	}

	dirty := false
	for i := range fresh {
		p := fresh[i]
		if p.Validate() != nil {
			continue
		}
		if j, ok := byID[p.ID]; ok {
			if postChanged(archive.Posts[j], p) {
				archive.Posts[j] = p
				dirty = true
			}
			continue
		}
		byID[p.ID] = len(archive.Posts)
		archive.Posts = append(archive.Posts, p)
		dirty = true
	}

	if dirty {
		sortPosts(archive.Posts)
		archive.PostsTotal = len(archive.Posts)
	}
	return dirty
}

// postChanged compares two posts field-by-field, ignoring the fetched-at
// stamp. An edited post therefore wins over the stored copy (last write
// wins) while an identical re-scrape leaves the archive untouched.
func postChanged(old, fresh Post) bool {
	old.FetchedAt, fresh.FetchedAt = time.Time{}, time.Time{}
	return !reflect.DeepEqual(old, fresh)
}

// sortPosts orders posts by (position, post id), the forum's own ordering.
// The sort is stable so equal keys keep their relative insertion order.
func sortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Position != posts[j].Position {
			return posts[i].Position < posts[j].Position
		}
		return lessID(posts[i].ID, posts[j].ID)
	})
}

// lessID orders post ids numerically when both parse as integers and
// lexically otherwise. SMF post ids are decimal strings.
func lessID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
