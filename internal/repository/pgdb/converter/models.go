package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Category  string    `db:"category"`
	Price     int64     `db:"price"`
	Stock     int64     `db:"stock"`
	Photos    []string  `db:"photos"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UserModel представляет запись таблицы users в PostgreSQL.
type UserModel struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	Role string `db:"role"`
}
