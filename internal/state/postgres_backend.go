package state

import (
	"database/sql"
	"errors"
	"log"
)

func (s *Store) ensureSchema() error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS story_states (
  story_id TEXT PRIMARY KEY,
  narrative TEXT NOT NULL DEFAULT '',
  premise TEXT NOT NULL DEFAULT '',
  pending_poll_id BIGINT NOT NULL DEFAULT 0,
  finished BOOLEAN NOT NULL DEFAULT FALSE,
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`)
	})
	return s.schemaErr
}

func (s *Store) loadDB(id string) StoryState {
	if st, ok := s.cache.Get(id); ok {
		return st
	}
	if err := s.ensureSchema(); err != nil {
		log.Printf("state: schema: %v (starting from empty state)", err)
		return StoryState{}
	}
	row := s.db.QueryRow(`SELECT narrative, premise, pending_poll_id, finished
FROM story_states WHERE story_id = $1`, id)
	var st StoryState
	if err := row.Scan(&st.Narrative, &st.Premise, &st.PendingPollID, &st.Finished); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("state: load %s: %v (starting from empty state)", id, err)
		}
		return StoryState{}
	}
	st = normalizeState(st)
	s.cache.Add(id, st)
	return st
}

func (s *Store) saveDB(id string, st StoryState) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.Exec(`
INSERT INTO story_states (story_id, narrative, premise, pending_poll_id, finished, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (story_id)
DO UPDATE SET narrative=EXCLUDED.narrative,
  premise=EXCLUDED.premise,
  pending_poll_id=EXCLUDED.pending_poll_id,
  finished=EXCLUDED.finished,
  updated_at=NOW()`,
		id, st.Narrative, st.Premise, st.PendingPollID, st.Finished)
	if err != nil {
		return err
	}
	s.cache.Add(id, st)
	return nil
}
