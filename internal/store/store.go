package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// Store handles SQLite persistence for users, roles, rooms and messages.
// database/sql pools connections, so every operation is its own scoped
// acquisition of a storage handle; nothing is held across network waits.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates a database connection and ensures the schema exists
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate ensures the database schema is up to date
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		hashed_password TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		avatar TEXT NOT NULL,
		description TEXT,
		ai_instructions TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS rooms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_by INTEGER NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (created_by) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		room_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		role_id INTEGER,
		content TEXT NOT NULL,
		message_type TEXT NOT NULL DEFAULT 'text',
		timestamp DATETIME NOT NULL,
		FOREIGN KEY (room_id) REFERENCES rooms(id),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (role_id) REFERENCES roles(id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_room_timestamp ON messages(room_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_roles_user ON roles(user_id);
	CREATE INDEX IF NOT EXISTS idx_rooms_created_by ON rooms(created_by);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// CreateUser inserts a new user and returns it with its generated id
func (s *Store) CreateUser(email, username, name, hashedPassword string) (*User, error) {
	now := time.Now().UTC()

	res, err := s.db.Exec(
		`INSERT INTO users (email, username, name, hashed_password, created_at) VALUES (?, ?, ?, ?, ?)`,
		email, username, name, hashedPassword, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}

	return &User{
		ID:             id,
		Email:          email,
		Username:       username,
		Name:           name,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
	}, nil
}

// UserByID fetches a user by primary key
func (s *Store) UserByID(id int64) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, username, name, hashed_password, created_at FROM users WHERE id = ?`, id))
}

// UserByUsername fetches a user by unique username
func (s *Store) UserByUsername(username string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, username, name, hashed_password, created_at FROM users WHERE username = ?`, username))
}

// UserByEmail fetches a user by unique email
func (s *Store) UserByEmail(email string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, username, name, hashed_password, created_at FROM users WHERE email = ?`, email))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Name, &u.HashedPassword, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// CreateRole inserts a new role for a user
func (s *Store) CreateRole(userID int64, name, avatar string, description, aiInstructions *string) (*Role, error) {
	now := time.Now().UTC()

	res, err := s.db.Exec(
		`INSERT INTO roles (user_id, name, avatar, description, ai_instructions, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, name, avatar, description, aiInstructions, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert role: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read role id: %w", err)
	}

	return &Role{
		ID:             id,
		UserID:         userID,
		Name:           name,
		Avatar:         avatar,
		Description:    description,
		AIInstructions: aiInstructions,
		CreatedAt:      now,
	}, nil
}

// RoleByID fetches a role by primary key, regardless of owner.
// The chat session handler looks personas up fresh on every frame.
func (s *Store) RoleByID(id int64) (*Role, error) {
	return s.scanRole(s.db.QueryRow(
		`SELECT id, user_id, name, avatar, description, ai_instructions, created_at FROM roles WHERE id = ?`, id))
}

// RoleByIDForUser fetches a role owned by the given user
func (s *Store) RoleByIDForUser(id, userID int64) (*Role, error) {
	return s.scanRole(s.db.QueryRow(
		`SELECT id, user_id, name, avatar, description, ai_instructions, created_at FROM roles WHERE id = ? AND user_id = ?`,
		id, userID))
}

// RolesByUser lists all roles owned by a user
func (s *Store) RolesByUser(userID int64) ([]*Role, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, name, avatar, description, ai_instructions, created_at FROM roles WHERE user_id = ? ORDER BY id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Avatar, &r.Description, &r.AIInstructions, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, &r)
	}
	return roles, rows.Err()
}

// DeleteRole removes a role owned by the given user
func (s *Store) DeleteRole(id, userID int64) error {
	res, err := s.db.Exec(`DELETE FROM roles WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanRole(row *sql.Row) (*Role, error) {
	var r Role
	err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.Avatar, &r.Description, &r.AIInstructions, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan role: %w", err)
	}
	return &r, nil
}

// CreateRoom inserts a new chat room
func (s *Store) CreateRoom(name string, createdBy int64) (*Room, error) {
	now := time.Now().UTC()

	res, err := s.db.Exec(
		`INSERT INTO rooms (name, created_by, created_at) VALUES (?, ?, ?)`,
		name, createdBy, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert room: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read room id: %w", err)
	}

	return &Room{ID: id, Name: name, CreatedBy: createdBy, CreatedAt: now}, nil
}

// RoomByID fetches a room by primary key
func (s *Store) RoomByID(id int64) (*Room, error) {
	var r Room
	err := s.db.QueryRow(
		`SELECT id, name, created_by, created_at FROM rooms WHERE id = ?`, id).
		Scan(&r.ID, &r.Name, &r.CreatedBy, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan room: %w", err)
	}
	return &r, nil
}

// RoomsByUser lists rooms created by a user
func (s *Store) RoomsByUser(userID int64) ([]*Room, error) {
	rows, err := s.db.Query(
		`SELECT id, name, created_by, created_at FROM rooms WHERE created_by = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedBy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, &r)
	}
	return rooms, rows.Err()
}

// CreateMessage appends a message to a room. The store assigns the id and
// the UTC timestamp; the returned record carries both.
func (s *Store) CreateMessage(roomID, userID int64, roleID *int64, content, messageType string) (*Message, error) {
	if messageType == "" {
		messageType = MessageTypeText
	}
	now := time.Now().UTC()

	res, err := s.db.Exec(
		`INSERT INTO messages (room_id, user_id, role_id, content, message_type, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		roomID, userID, roleID, content, messageType, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read message id: %w", err)
	}

	return &Message{
		ID:          id,
		RoomID:      roomID,
		UserID:      userID,
		RoleID:      roleID,
		Content:     content,
		MessageType: messageType,
		Timestamp:   now,
	}, nil
}

// MessagesByRoom returns up to limit messages for a room, newest page
// first, re-ordered chronologically for the caller.
func (s *Store) MessagesByRoom(roomID int64, limit, offset int) ([]*Message, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(
		`SELECT id, room_id, user_id, role_id, content, message_type, timestamp
		 FROM messages WHERE room_id = ?
		 ORDER BY timestamp DESC, id DESC
		 LIMIT ? OFFSET ?`,
		roomID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.RoleID, &m.Content, &m.MessageType, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Chronological order for display
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
