package types

// Auth error codes surfaced to clients with localized messages.
const (
	AuthCodeWrongPassword   = "wrong-password"
	AuthCodeInvalidEmail    = "invalid-email"
	AuthCodeUserNotFound    = "user-not-found"
	AuthCodeTooManyRequests = "too-many-requests"
)

// authMessages maps known auth error codes to per-language messages.
// English is the fallback for unknown languages.
var authMessages = map[string]map[string]string{
	AuthCodeWrongPassword: {
		"en": "Incorrect password. Please try again.",
		"es": "Contraseña incorrecta. Inténtalo de nuevo.",
		"fr": "Mot de passe incorrect. Veuillez réessayer.",
		"de": "Falsches Passwort. Bitte versuche es erneut.",
		"pt": "Senha incorreta. Tente novamente.",
	},
	AuthCodeInvalidEmail: {
		"en": "That email address doesn't look right.",
		"es": "Esa dirección de correo no parece válida.",
		"fr": "Cette adresse e-mail ne semble pas valide.",
		"de": "Diese E-Mail-Adresse scheint ungültig zu sein.",
		"pt": "Esse endereço de e-mail não parece válido.",
	},
	AuthCodeUserNotFound: {
		"en": "No account found for that email.",
		"es": "No se encontró ninguna cuenta con ese correo.",
		"fr": "Aucun compte trouvé pour cet e-mail.",
		"de": "Kein Konto für diese E-Mail gefunden.",
		"pt": "Nenhuma conta encontrada para esse e-mail.",
	},
	AuthCodeTooManyRequests: {
		"en": "Too many attempts. Please wait a moment and try again.",
		"es": "Demasiados intentos. Espera un momento e inténtalo de nuevo.",
		"fr": "Trop de tentatives. Patientez un instant puis réessayez.",
		"de": "Zu viele Versuche. Bitte warte kurz und versuche es erneut.",
		"pt": "Muitas tentativas. Aguarde um momento e tente novamente.",
	},
}

// genericAuthMessages is used for codes without a dedicated entry.
var genericAuthMessages = map[string]string{
	"en": "Something went wrong. Please try again.",
	"es": "Algo salió mal. Inténtalo de nuevo.",
	"fr": "Une erreur est survenue. Veuillez réessayer.",
	"de": "Etwas ist schiefgelaufen. Bitte versuche es erneut.",
	"pt": "Algo deu errado. Tente novamente.",
}

// AuthMessage returns the localized message for a known auth error code,
// falling back to English and then to a generic message for unknown codes.
func AuthMessage(code, language string) string {
	messages, ok := authMessages[code]
	if !ok {
		if msg, ok := genericAuthMessages[language]; ok {
			return msg
		}

		return genericAuthMessages["en"]
	}

	if msg, ok := messages[language]; ok {
		return msg
	}

	return messages["en"]
}
