package session

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/yourorg/fitclubcl/internal/models"
	"github.com/yourorg/fitclubcl/internal/token"
)

// sessionDoc es el documento JSON persistido en disco. Las cuatro keys de la
// sesión viven en un solo archivo para que Clear sea una unidad lógica.
type sessionDoc struct {
	Token   string          `json:"token,omitempty"`
	UserID  string          `json:"userId,omitempty"`
	Email   string          `json:"email,omitempty"`
	Profile json.RawMessage `json:"profile,omitempty"`
}

// FileStore persiste la sesión en un archivo JSON local, plano o cifrado
// con XChaCha20-Poly1305 si se entrega una key de 32 bytes.
type FileStore struct {
	path string
	key  []byte // nil = sin cifrar
}

// NewFileStore crea un FileStore sobre path. key debe ser nil (texto plano)
// o exactamente 32 bytes; una key de largo inválido se ignora con warning
// para no dejar al agente sin storage.
func NewFileStore(path string, key []byte) *FileStore {
	if key != nil && len(key) != chacha20poly1305.KeySize {
		log.Printf("⚠️ Session key inválida (%d bytes, se esperan %d), usando archivo sin cifrar", len(key), chacha20poly1305.KeySize)
		key = nil
	}
	return &FileStore{path: path, key: key}
}

// DefaultPath retorna la ruta por defecto del archivo de sesión
// (~/.config/fitclubcl/session.json o equivalente de la plataforma).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "fitclubcl", "session.json")
}

func (s *FileStore) SaveSession(tok, email, userID string) bool {
	doc, _ := s.load()
	doc.Token = tok
	doc.Email = email
	if userID == "" {
		userID = token.ExtractUserID(tok)
	}
	if userID != "" {
		doc.UserID = userID
	}
	return s.save(doc)
}

func (s *FileStore) Token() string {
	doc, ok := s.load()
	if !ok {
		return ""
	}
	return doc.Token
}

func (s *FileStore) UserID() string {
	doc, ok := s.load()
	if !ok {
		return ""
	}
	return doc.UserID
}

func (s *FileStore) Email() string {
	doc, ok := s.load()
	if !ok {
		return ""
	}
	return doc.Email
}

func (s *FileStore) SaveProfile(p models.UserProfile) bool {
	raw, err := json.Marshal(p)
	if err != nil {
		return false
	}
	doc, _ := s.load()
	doc.Profile = raw
	return s.save(doc)
}

func (s *FileStore) Profile() (models.UserProfile, bool) {
	doc, ok := s.load()
	if !ok || len(doc.Profile) == 0 {
		return models.UserProfile{}, false
	}
	var p models.UserProfile
	if err := json.Unmarshal(doc.Profile, &p); err != nil {
		return models.UserProfile{}, false
	}
	return p, true
}

func (s *FileStore) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *FileStore) Clear() bool {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️ No se pudo limpiar la sesión: %v", err)
		return false
	}
	return true
}

// load lee y decodifica el documento. Retorna (zero, false) ante cualquier
// falla: archivo ausente, cifrado corrupto o JSON inválido.
func (s *FileStore) load() (sessionDoc, bool) {
	var doc sessionDoc
	data, err := os.ReadFile(s.path)
	if err != nil {
		return doc, false
	}
	data, err = openSealed(data, s.key)
	if err != nil {
		return sessionDoc{}, false
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return sessionDoc{}, false
	}
	return doc, true
}

// save escribe el documento de forma atómica (archivo temporal + rename)
// para que una escritura interrumpida nunca deje una sesión a medias.
func (s *FileStore) save(doc sessionDoc) bool {
	data, err := json.Marshal(doc)
	if err != nil {
		return false
	}
	data, err = seal(data, s.key)
	if err != nil {
		return false
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		log.Printf("⚠️ No se pudo crear el directorio de sesión: %v", err)
		return false
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		log.Printf("⚠️ No se pudo escribir la sesión: %v", err)
		return false
	}
	if err := os.Rename(tmp, s.path); err != nil {
		log.Printf("⚠️ No se pudo renombrar el archivo de sesión: %v", err)
		_ = os.Remove(tmp)
		return false
	}
	return true
}

// seal cifra data con XChaCha20-Poly1305, nonce aleatorio al inicio del
// blob. Con key nil retorna data sin tocar.
func seal(data, key []byte) ([]byte, error) {
	if key == nil {
		return data, nil
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, data, nil), nil
}

func openSealed(blob, key []byte) ([]byte, error) {
	if key == nil {
		return blob, nil
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(blob) < aead.NonceSize() {
		return nil, errors.New("session: blob demasiado corto")
	}
	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}

// ReadTokenFile lee el token directamente del archivo de sesión, sin pasar
// por la API del Store. Lo usa el poller en background, que corre fuera del
// ciclo de vida normal de la app. Retorna "" ante cualquier falla.
func ReadTokenFile(path string, key []byte) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	data, err = openSealed(data, key)
	if err != nil {
		return ""
	}
	var doc sessionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}
	return doc.Token
}
