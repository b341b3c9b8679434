package session

// State identifies where a user currently is in the intake flow.
type State string

const (
	StateStart           State = "start"
	StateWaitingPassport State = "waiting_passport"
	StateWaitingVehicle  State = "waiting_vehicle"
	StatePriceQuotation  State = "price_quotation"
	StatePolicyIssued    State = "policy_issued"
	StateAIConversation  State = "ai_conversation"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is a single recorded turn of the AI side-channel.
type Message struct {
	Role Role
	Text string
}

// Session tracks one user's progress through the intake flow plus the
// conversation they have had with the assistant. Sessions are ephemeral:
// they live in process memory for the lifetime of the bot.
type Session struct {
	State State

	// SavedState is the state to return to when the user leaves the AI
	// side-channel. Only meaningful while State is StateAIConversation.
	SavedState State

	Passport string // rendered passport summary, empty until collected
	Vehicle  string // rendered vehicle summary, empty until collected

	// History is append-only. The prompt window sent to the model may be
	// capped, but recorded turns are never dropped.
	History []Message
}

// EnterAI switches the session into the AI side-channel, remembering the
// current state as the resume target. Entering again while already in the
// side-channel keeps the original target so a nested "ask AI" cannot
// clobber where the user came from.
func (s *Session) EnterAI() {
	if s.State == StateAIConversation {
		return
	}
	s.SavedState = s.State
	s.State = StateAIConversation
}

// Resume restores the pre-interrupt state and returns it. An unset target
// falls back to StateStart.
func (s *Session) Resume() State {
	prev := s.SavedState
	if prev == "" {
		prev = StateStart
	}
	s.State = prev
	s.SavedState = ""
	return prev
}

// Append records one conversation turn.
func (s *Session) Append(role Role, text string) {
	s.History = append(s.History, Message{Role: role, Text: text})
}

// LastTurns returns up to limit most recent turns. limit <= 0 returns the
// whole history.
func (s *Session) LastTurns(limit int) []Message {
	if limit <= 0 || len(s.History) <= limit {
		return s.History
	}
	return s.History[len(s.History)-limit:]
}
