package main

import (
	// Стандартные библиотеки
	"log"           // Для логирования
	"os"            // Для работы с переменными окружения и файловой системой
	"path/filepath" // Для получения директории из пути к файлу БД

	// Внутренние пакеты
	"pereval/internal/database" // Для работы с базой данных
	"pereval/internal/handlers" // Для обработчиков HTTP-запросов

	// Сторонние библиотеки
	"github.com/gin-gonic/gin" // Основной веб-фреймворк Gin
	"github.com/joho/godotenv" // Загрузка переменных окружения из .env
)

// getEnv получает значение переменной окружения по ключу.
// Если переменная не установлена, возвращает значение fallback и логирует предупреждение.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	log.Printf("Переменная окружения %s не установлена, используется значение по умолчанию: %s", key, fallback)
	return fallback
}

// checkOrCreateDir проверяет существование директории по указанному пути.
// Если директория не существует, пытается её создать со всеми родительскими директориями.
// Если путь существует, но не является директорией, или произошла другая ошибка,
// логирует критическую ошибку и завершает программу.
func checkOrCreateDir(dirPath string) {
	if dirPath == "" {
		log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: Путь к директории не может быть пустым.")
	}
	// Предотвращаем случайное использование корня или текущей директории
	if dirPath == "/" || dirPath == "." {
		log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: Указан небезопасный путь для создания директории: %s", dirPath)
	}

	info, err := os.Stat(dirPath)

	// Случай 1: Путь не существует - создаем
	if os.IsNotExist(err) {
		log.Printf("Папка %s не найдена, создаем...", dirPath)
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось создать папку %s: %v", dirPath, err)
		}
		log.Printf("Папка %s успешно создана.", dirPath)
		return
	}

	// Случай 2: Произошла другая ошибка при проверке пути
	if err != nil {
		log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: ошибка при проверке папки %s: %v", dirPath, err)
	}

	// Случай 3: Путь существует, но это не директория
	if !info.IsDir() {
		log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: Путь %s существует, но не является директорией.", dirPath)
	}

	log.Printf("Папка %s найдена.", dirPath)
}

// main - главная функция приложения, точка входа.
func main() {
	// --- 1. Конфигурация ---
	// Загружаем .env, если он есть. Отсутствие файла не критично:
	// все переменные могут прийти из окружения напрямую (Docker, systemd).
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используются переменные окружения.")
	}

	dbPath := getEnv("DB_PATH", "./data/pereval.db") // Путь к файлу БД
	listenPort := getEnv("LISTEN_PORT", "8080")      // Порт для прослушивания

	// Проверяем и создаем директорию для БД ДО инициализации соединения.
	log.Printf("Проверка директории для БД: %s", filepath.Dir(dbPath))
	checkOrCreateDir(filepath.Dir(dbPath))

	// --- 2. Инициализация Зависимостей ---
	// Инициализируем соединение с базой данных и применяем идемпотентную схему.
	// При ошибке завершаем работу.
	if err := database.InitDB(dbPath); err != nil {
		log.Fatalf("Ошибка инициализации базы данных: %v", err)
	}

	// Устанавливаем режим работы Gin (ReleaseMode для продакшена).
	gin.SetMode(gin.ReleaseMode)
	// Создаем экземпляр Gin engine с настройками по умолчанию (логгер, восстановление после паник).
	router := gin.Default()

	// Настройка доверенных прокси. `nil` отключает доверие к заголовкам
	// X-Forwarded-For; если сервис стоит за обратным прокси, укажите его подсеть.
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatalf("Ошибка установки доверенных прокси: %v", err)
	}

	// --- 3. Маршруты ---
	handlers.RegisterRoutes(router)

	// --- 4. Запуск Сервера ---
	listenAddr := ":" + listenPort
	log.Printf("Mountain Passes API запускается на порту %s", listenPort)

	// router.Run() блокирует выполнение до завершения работы сервера или ошибки.
	if err := router.Run(listenAddr); err != nil {
		log.Fatalf("Не удалось запустить сервер: %v", err)
	}
}
