package database

import (
	// Стандартные библиотеки
	"database/sql" // Основной пакет для работы с SQL базами данных
	"fmt"          // Для форматирования строк и ошибок
	"log"          // Для логирования
	"time"         // Для настройки времени жизни соединений

	// Драйвер SQLite. Пустой импорт (_) означает, что мы импортируем пакет
	// только ради его побочных эффектов - регистрации драйвера "sqlite" в пакете database/sql.
	_ "modernc.org/sqlite"
)

// DB - Глобальная переменная для хранения пула соединений с базой данных (*sql.DB).
// Экспортируется (начинается с большой буквы), чтобы быть доступной из других пакетов.
var DB *sql.DB

// timeLayout - формат хранения временных меток (RFC 3339 с наносекундами фиксированной
// ширины, всегда UTC). Фиксированная ширина гарантирует, что лексикографический
// ORDER BY add_time совпадает с хронологическим порядком.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// nowString возвращает текущее время в формате хранения.
func nowString() string {
	return time.Now().UTC().Format(timeLayout)
}

// InitDB инициализирует соединение с базой данных SQLite.
// Принимает dataSourceName - путь к файлу БД.
// Создает таблицы и индексы, если они не существуют (повторный запуск безопасен).
// Настраивает параметры соединения.
func InitDB(dataSourceName string) error {
	var err error

	// Формируем строку подключения (DSN) с дополнительными параметрами SQLite:
	// - journal_mode=WAL: режим журналирования, более производительный
	//   при одновременном чтении и записи, чем стандартный DELETE.
	// - busy_timeout=5000: таймаут (в миллисекундах) ожидания снятия блокировки
	//   базы данных при конкурентном доступе.
	// - foreign_keys=ON: включает принудительное соблюдение внешних ключей.
	//   Без него не работают каскадные удаления - для этой схемы параметр обязателен.
	// - synchronous=NORMAL: компромисс между скоростью и надежностью записи.
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", dataSourceName)

	// sql.Open не устанавливает соединение немедленно, а только подготавливает объект *sql.DB.
	DB, err = sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("ошибка при открытии %s: %w", dataSourceName, err)
	}

	// Настройка пула соединений. Для SQLite ограничиваем пул одним активным
	// соединением: параллельная запись в один файл затруднена.
	DB.SetMaxOpenConns(1)
	DB.SetMaxIdleConns(1)
	DB.SetConnMaxLifetime(time.Hour)

	// DB.Ping() проверяет фактическое соединение с базой данных.
	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("ошибка при проверке соединения с %s: %w", dataSourceName, err)
	}

	log.Println("Успешно подключились к базе данных:", dataSourceName)

	// Вызываем функцию для создания необходимых таблиц и индексов.
	if err = createTables(); err != nil {
		DB.Close()
		return fmt.Errorf("ошибка при создании таблиц: %w", err)
	}
	log.Println("Таблицы и индексы успешно проверены/созданы.")
	return nil
}

// createTables создает таблицы 'users', 'mountain_passes', 'difficulty_levels'
// и 'images', а также необходимые индексы, если они еще не существуют.
// Вся целостность данных объявлена прямо в схеме: уникальность email,
// внешние ключи с каскадным удалением, CHECK-ограничения на статусы,
// сезоны и категории сложности.
func createTables() error {
	// Таблица отправителей. Email уникален: повторная отправка с тем же
	// адресом переиспользует существующую запись.
	usersTableSQL := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, -- Уникальный ID пользователя (автоинкремент)
		email TEXT NOT NULL UNIQUE,                    -- Электронная почта (уникальная, не NULL)
		phone TEXT,                                    -- Телефон
		fam TEXT NOT NULL,                             -- Фамилия
		name TEXT NOT NULL,                            -- Имя
		otc TEXT,                                      -- Отчество
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP  -- Время создания записи
	);`

	if _, err := DB.Exec(usersTableSQL); err != nil {
		return fmt.Errorf("ошибка при создании таблицы users: %w", err)
	}

	// Таблица перевалов. При удалении пользователя все его перевалы
	// удаляются каскадно (ON DELETE CASCADE).
	passesTableSQL := `
	CREATE TABLE IF NOT EXISTS mountain_passes (
		id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, -- Уникальный ID перевала
		beauty_title TEXT,                             -- "Красивое" название
		title TEXT NOT NULL,                           -- Официальное название
		other_titles TEXT,                             -- Другие названия
		connect TEXT,                                  -- Что соединяет перевал
		user_id INTEGER NOT NULL,                      -- ID отправителя (внешний ключ)
		latitude NUMERIC(10,7) NOT NULL,               -- Широта
		longitude NUMERIC(10,7) NOT NULL,              -- Долгота
		height INTEGER NOT NULL,                       -- Высота в метрах
		status TEXT NOT NULL DEFAULT 'new'
			CHECK (status IN ('new', 'pending', 'accepted', 'rejected')), -- Статус модерации
		add_time DATETIME DEFAULT CURRENT_TIMESTAMP,   -- Время добавления
		update_time DATETIME NULL,                     -- Время последнего редактирования
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);`

	if _, err := DB.Exec(passesTableSQL); err != nil {
		return fmt.Errorf("ошибка при создании таблицы mountain_passes: %w", err)
	}

	// Таблица сезонных категорий сложности. Пара (перевал, сезон) уникальна:
	// на один сезон допускается не более одной категории.
	levelsTableSQL := `
	CREATE TABLE IF NOT EXISTS difficulty_levels (
		id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, -- Уникальный ID записи
		pass_id INTEGER NOT NULL,                      -- ID перевала (внешний ключ)
		season TEXT NOT NULL
			CHECK (season IN ('summer', 'autumn', 'winter', 'spring')), -- Сезон
		level TEXT NOT NULL
			CHECK (level IN ('1A', '1B', '2A', '2B', '3A', '3B')),      -- Категория сложности
		UNIQUE(pass_id, season),
		FOREIGN KEY(pass_id) REFERENCES mountain_passes(id) ON DELETE CASCADE
	);`

	if _, err := DB.Exec(levelsTableSQL); err != nil {
		return fmt.Errorf("ошибка при создании таблицы difficulty_levels: %w", err)
	}

	// Таблица фотографий. Хранятся только ссылки; при удалении перевала
	// записи о фотографиях удаляются каскадно.
	imagesTableSQL := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, -- Уникальный ID фотографии
		pass_id INTEGER NOT NULL,                      -- ID перевала (внешний ключ)
		title TEXT,                                    -- Подпись к фотографии
		img_url TEXT NOT NULL,                         -- Ссылка на изображение
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP, -- Время создания записи
		FOREIGN KEY(pass_id) REFERENCES mountain_passes(id) ON DELETE CASCADE
	);`

	if _, err := DB.Exec(imagesTableSQL); err != nil {
		return fmt.Errorf("ошибка при создании таблицы images: %w", err)
	}

	// --- Создание индексов для ускорения запросов ---
	// Индекс для выборки перевалов конкретного отправителя.
	indexUserIDSQL := `CREATE INDEX IF NOT EXISTS idx_mountain_passes_user_id ON mountain_passes (user_id);`
	// Индекс для выборок по статусу (например, очередь модерации).
	indexStatusSQL := `CREATE INDEX IF NOT EXISTS idx_mountain_passes_status ON mountain_passes (status);`
	// Индекс для выборки фотографий перевала.
	indexImagesPassSQL := `CREATE INDEX IF NOT EXISTS idx_images_pass_id ON images (pass_id);`

	if _, err := DB.Exec(indexUserIDSQL); err != nil {
		return fmt.Errorf("ошибка при создании индекса user_id mountain_passes: %w", err)
	}
	if _, err := DB.Exec(indexStatusSQL); err != nil {
		return fmt.Errorf("ошибка при создании индекса статуса mountain_passes: %w", err)
	}
	if _, err := DB.Exec(indexImagesPassSQL); err != nil {
		return fmt.Errorf("ошибка при создании индекса pass_id images: %w", err)
	}

	return nil
}

// GetDB возвращает глобальный экземпляр *sql.DB.
// Используется другими пакетами для доступа к базе данных.
func GetDB() *sql.DB {
	return DB
}
