package models

// Book is a catalog entry. Books are keyed by ISBN and never modified by the web app.
type Book struct {
	ISBN   string `db:"isbn" json:"isbn"`
	Title  string `db:"title" json:"title"`
	Author string `db:"author" json:"author"`
	Year   int    `db:"year" json:"year"`
}
