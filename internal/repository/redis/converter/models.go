package converter

import "time"

// ProjectRedisModel: проект в кэше. Вектор не кэшируется.
type ProjectRedisModel struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Brief       string     `json:"brief"`
	Keywords    string     `json:"keywords"`
	Emotion     string     `json:"emotion"`
	LookAndFeel string     `json:"look_and_feel"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
