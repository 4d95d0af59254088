package entities

type Credit struct {
	ID      string `db:"id"`
	Balance int64  `db:"balance"`
}
