package models

import (
	// Стандартные библиотеки
	"database/sql" // Нужен для типа sql.NullString, представляющего NULLable значения в БД
)

// Статусы перевала. Набор зафиксирован CHECK-ограничением в таблице mountain_passes.
// Новая запись всегда создается со статусом StatusNew; дальнейшая смена статуса
// (модерация) выполняется вне этого сервиса.
const (
	StatusNew      = "new"
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Seasons - допустимые сезоны для категории сложности, в порядке обхода при вставке.
// Набор зафиксирован CHECK-ограничением в таблице difficulty_levels.
var Seasons = []string{"winter", "summer", "autumn", "spring"}

// User представляет отправителя данных о перевале.
// Поля структуры соответствуют столбцам в таблице 'users'.
// Это контактные данные, а не учетная запись: пароля и аутентификации в системе нет.
type User struct {
	ID    int64  `json:"id"`    // Уникальный идентификатор пользователя (Primary Key)
	Email string `json:"email"` // Электронная почта (UNIQUE, не NULL)
	Phone string `json:"phone"` // Телефон (может быть пустым)
	Fam   string `json:"fam"`   // Фамилия (не NULL)
	Name  string `json:"name"`  // Имя (не NULL)
	Otc   string `json:"otc"`   // Отчество (может быть пустым)
}

// MountainPass представляет запись о горном перевале в таблице 'mountain_passes'.
// Временные метки хранятся строками фиксированной ширины (RFC 3339 с наносекундами, UTC),
// поэтому лексикографическая сортировка по add_time совпадает с хронологической.
type MountainPass struct {
	ID          int64          `json:"id"`           // Уникальный идентификатор перевала (Primary Key)
	BeautyTitle string         `json:"beauty_title"` // "Красивое" название (например, "пер. Дятлова")
	Title       string         `json:"title"`        // Официальное название (не NULL)
	OtherTitles string         `json:"other_titles"` // Другие названия
	Connect     string         `json:"connect"`      // Что соединяет перевал
	UserID      int64          `json:"user_id"`      // ID отправителя (Foreign Key, ON DELETE CASCADE)
	Latitude    float64        `json:"latitude"`     // Широта
	Longitude   float64        `json:"longitude"`    // Долгота
	Height      int64          `json:"height"`       // Высота в метрах
	Status      string         `json:"status"`       // Текущий статус ('new', 'pending', 'accepted', 'rejected')
	AddTime     string         `json:"add_time"`     // Время добавления записи
	UpdateTime  sql.NullString `json:"update_time"`  // Время последнего редактирования (NULL, если не редактировалась)
}

// DifficultyLevel представляет сезонную категорию сложности перевала
// в таблице 'difficulty_levels'. На пару (перевал, сезон) допускается не более
// одной записи (UNIQUE-ограничение).
type DifficultyLevel struct {
	ID     int64  `json:"id"`
	PassID int64  `json:"pass_id"` // ID перевала (Foreign Key, ON DELETE CASCADE)
	Season string `json:"season"`  // Сезон ('summer', 'autumn', 'winter', 'spring')
	Level  string `json:"level"`   // Категория ('1A', '1B', '2A', '2B', '3A', '3B')
}

// Image представляет фотографию перевала в таблице 'images'.
// Хранится только ссылка на изображение, не само содержимое.
type Image struct {
	ID     int64  `json:"id"`
	PassID int64  `json:"pass_id"` // ID перевала (Foreign Key, ON DELETE CASCADE)
	Title  string `json:"title"`   // Подпись к фотографии
	ImgURL string `json:"url"`     // Ссылка на изображение (не NULL)
}
