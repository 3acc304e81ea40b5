// Package events defines the outbound messages a game session emits.
// Each message is a distinct struct with a fixed Type tag, so handlers
// on both sides can switch exhaustively instead of probing loose maps.
package events

import "encoding/json"

// Type discriminates the outbound event variants.
type Type string

const (
	TypeStateUpdated   Type = "STATE_UPDATED"
	TypeQuestionPosed  Type = "QUESTION_POSED"
	TypeEnemiesUpdated Type = "ENEMIES_UPDATED"
	TypeWaveStarted    Type = "WAVE_STARTED"
	TypeWaveCompleted  Type = "WAVE_COMPLETED"
	TypeBombUsed       Type = "BOMB_USED"
	TypeFrozen         Type = "FROZEN"
	TypeDefeat         Type = "DEFEAT"
	TypeVictory        Type = "VICTORY"
	TypeError          Type = "ERROR"
)

// Event is implemented by every outbound variant.
type Event interface {
	EventType() Type
}

// Sink receives the events a session emits. The network client is the
// production sink; tests use an in-memory recorder.
type Sink interface {
	Emit(e Event)
}

// Powerups is the player's consumable inventory.
type Powerups struct {
	Bombs   int `json:"bombs"`
	Freezes int `json:"freezes"`
}

// IncorrectAnswer records one wrong submission for the end-of-game recap.
type IncorrectAnswer struct {
	Statement     string `json:"statement"`
	CorrectAnswer string `json:"correct_answer"`
	ChosenText    string `json:"chosen_text"`
}

// StateUpdated carries the player-facing counters after any mutation.
type StateUpdated struct {
	Lives     int      `json:"lives"`
	Score     int      `json:"score"`
	Successes int      `json:"successes"`
	Powerups  Powerups `json:"powerups"`
	// Correct is set only in response to an answer submission.
	Correct *bool `json:"correct,omitempty"`
	// BaseBreached is set when an enemy reached the base this tick.
	BaseBreached bool `json:"base_breached,omitempty"`
}

func (StateUpdated) EventType() Type { return TypeStateUpdated }

// QuestionPosed broadcasts the front-most enemy's question with
// shuffled options.
type QuestionPosed struct {
	EnemyID       int64    `json:"enemy_id"`
	Statement     string   `json:"statement"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	EnemyPosition float64  `json:"enemy_position"`
}

func (QuestionPosed) EventType() Type { return TypeQuestionPosed }

// EnemyState is one visible enemy in a snapshot.
type EnemyState struct {
	ID        int64   `json:"id"`
	Position  float64 `json:"position"`
	Statement string  `json:"statement"`
	Speed     float64 `json:"speed"`
	TypeName  string  `json:"type"`
}

// EnemiesUpdated is the per-tick snapshot of the battlefield.
type EnemiesUpdated struct {
	Enemies          []EnemyState `json:"enemies"`
	WaveIndex        int          `json:"wave_index"`
	WaveTotal        int          `json:"wave_total"`
	RemainingToSpawn int          `json:"remaining_to_spawn"`
	Resting          bool         `json:"resting"`
	LevelName        string       `json:"level_name"`
}

func (EnemiesUpdated) EventType() Type { return TypeEnemiesUpdated }

// WaveStarted announces a new wave.
type WaveStarted struct {
	WaveIndex    int `json:"wave_index"`
	TotalEnemies int `json:"total_enemies"`
}

func (WaveStarted) EventType() Type { return TypeWaveStarted }

// RewardKind names the power-up granted for clearing a wave.
type RewardKind string

const (
	RewardBomb   RewardKind = "bomb"
	RewardFreeze RewardKind = "freeze"
)

// WaveCompleted announces a cleared wave and its reward.
type WaveCompleted struct {
	WaveIndex  int        `json:"wave_index"`
	RewardKind RewardKind `json:"reward_kind"`
}

func (WaveCompleted) EventType() Type { return TypeWaveCompleted }

// BombUsed reports a bomb detonation.
type BombUsed struct {
	EliminatedCount int `json:"eliminated_count"`
}

func (BombUsed) EventType() Type { return TypeBombUsed }

// Frozen reports a freeze activation.
type Frozen struct {
	DurationTicks int `json:"duration_ticks"`
}

func (Frozen) EventType() Type { return TypeFrozen }

// Defeat ends a session with zero lives.
type Defeat struct {
	FinalScore   int               `json:"final_score"`
	IncorrectLog []IncorrectAnswer `json:"incorrect_log"`
}

func (Defeat) EventType() Type { return TypeDefeat }

// Victory ends a session with every wave cleared.
type Victory struct {
	FinalScore     int               `json:"final_score"`
	WavesCompleted int               `json:"waves_completed"`
	LevelName      string            `json:"level_name"`
	IncorrectLog   []IncorrectAnswer `json:"incorrect_log"`
}

func (Victory) EventType() Type { return TypeVictory }

// Error reports a failure that prevented or ended a session.
type Error struct {
	Message string `json:"message"`
}

func (Error) EventType() Type { return TypeError }

// envelope is the wire framing for outbound events.
type envelope struct {
	Type Type  `json:"type"`
	Data Event `json:"data"`
}

// Marshal frames an event as {"type": ..., "data": ...} for the wire.
func Marshal(e Event) ([]byte, error) {
	return json.Marshal(envelope{Type: e.EventType(), Data: e})
}
