package apierr

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supported = []language.Tag{
	language.English,
	language.German,
	language.Spanish,
}

var (
	matcher  = language.NewMatcher(supported)
	messages = catalog.NewBuilder(catalog.Fallback(language.English))
)

// translations are keyed by the English message format.
var translations = map[string]map[language.Tag]string{
	"Internal server error": {
		language.German:  "Interner Serverfehler",
		language.Spanish: "Error interno del servidor",
	},
	"Organization identifier is required": {
		language.German:  "Organisationskennung ist erforderlich",
		language.Spanish: "Se requiere el identificador de la organización",
	},
	"Organization not found": {
		language.German:  "Organisation nicht gefunden",
		language.Spanish: "Organización no encontrada",
	},
	"Organization account is suspended": {
		language.German:  "Das Organisationskonto ist gesperrt",
		language.Spanish: "La cuenta de la organización está suspendida",
	},
	"Organization account is cancelled": {
		language.German:  "Das Organisationskonto wurde gekündigt",
		language.Spanish: "La cuenta de la organización está cancelada",
	},
	"Feature is not included in your plan": {
		language.German:  "Diese Funktion ist in Ihrem Tarif nicht enthalten",
		language.Spanish: "Esta función no está incluida en su plan",
	},
	"Trial period has expired": {
		language.German:  "Der Testzeitraum ist abgelaufen",
		language.Spanish: "El periodo de prueba ha expirado",
	},
	"Active subscription required": {
		language.German:  "Aktives Abonnement erforderlich",
		language.Spanish: "Se requiere una suscripción activa",
	},
	"User limit reached (%d users)": {
		language.German:  "Benutzerlimit erreicht (%d Benutzer)",
		language.Spanish: "Límite de usuarios alcanzado (%d usuarios)",
	},
	"Project limit reached (%d projects)": {
		language.German:  "Projektlimit erreicht (%d Projekte)",
		language.Spanish: "Límite de proyectos alcanzado (%d proyectos)",
	},
	"Storage limit reached (%d GB)": {
		language.German:  "Speicherlimit erreicht (%d GB)",
		language.Spanish: "Límite de almacenamiento alcanzado (%d GB)",
	},
	"Authentication required": {
		language.German:  "Anmeldung erforderlich",
		language.Spanish: "Se requiere autenticación",
	},
	"Access denied for this organization": {
		language.German:  "Zugriff auf diese Organisation verweigert",
		language.Spanish: "Acceso denegado a esta organización",
	},
	"Failed to resolve organization": {
		language.German:  "Organisation konnte nicht ermittelt werden",
		language.Spanish: "No se pudo determinar la organización",
	},
	"Failed to check plan limits": {
		language.German:  "Tariflimits konnten nicht geprüft werden",
		language.Spanish: "No se pudieron comprobar los límites del plan",
	},
	"Failed to check organization access": {
		language.German:  "Organisationszugriff konnte nicht geprüft werden",
		language.Spanish: "No se pudo comprobar el acceso a la organización",
	},
	"Insufficient permissions": {
		language.German:  "Unzureichende Berechtigungen",
		language.Spanish: "Permisos insuficientes",
	},
	"Invalid credentials": {
		language.German:  "Ungültige Anmeldedaten",
		language.Spanish: "Credenciales no válidas",
	},
	"Invalid request body": {
		language.German:  "Ungültiger Anfrageinhalt",
		language.Spanish: "Cuerpo de la solicitud no válido",
	},
	"Email is already registered": {
		language.German:  "Die E-Mail-Adresse ist bereits registriert",
		language.Spanish: "El correo electrónico ya está registrado",
	},
	"Unknown or forbidden role": {
		language.German:  "Unbekannte oder unzulässige Rolle",
		language.Spanish: "Rol desconocido o no permitido",
	},
	"Unknown organization status": {
		language.German:  "Unbekannter Organisationsstatus",
		language.Spanish: "Estado de organización desconocido",
	},
	"Resource not found": {
		language.German:  "Ressource nicht gefunden",
		language.Spanish: "Recurso no encontrado",
	},
}

func init() {
	for key, langs := range translations {
		for tag, msg := range langs {
			if err := messages.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

// Register adds a translation for a message key.
// Call it during initialization only; the catalog is not guarded for concurrent writes.
func Register(tag language.Tag, key, msg string) error {
	return messages.SetString(tag, key, msg)
}

// Printer returns a message printer for the request's preferred language.
func Printer(r *http.Request) *message.Printer {
	return message.NewPrinter(Language(r), message.Catalog(messages))
}

// Language picks the best supported language from the Accept-Language header.
func Language(r *http.Request) language.Tag {
	if r == nil {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}
