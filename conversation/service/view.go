package service

import (
	"companion-chat/backend/conversation/models"
)

// ViewOptions controls how the message view is assembled.
type ViewOptions struct {
	// ExcludeImages drops image turns, used when the view feeds a
	// text-only consumer.
	ExcludeImages bool
}

// View assembles what the user sees: the synthesized intro first, the
// character's portrait second, then the persisted turns in order.
// Persisted rows that carry the reserved intro prefix are skipped only
// while a synthesized opener is rendered, so a conversation shows
// exactly one greeting whether it is fresh or reloaded.
func (s *ChatSession) View(opts ViewOptions) []models.Message {
	s.mu.Lock()
	persisted := make([]models.Message, len(s.messages))
	copy(persisted, s.messages)
	s.mu.Unlock()

	var view []models.Message

	intro := s.intro.Message()
	if intro != nil {
		view = append(view, *intro)
		if avatar := s.intro.AvatarMessage(); avatar != nil && !opts.ExcludeImages {
			view = append(view, *avatar)
		}
	}

	for _, m := range persisted {
		if intro != nil && m.IsIntro() {
			continue
		}
		if opts.ExcludeImages && m.Kind == models.KindImage {
			continue
		}
		view = append(view, m)
	}
	return view
}
