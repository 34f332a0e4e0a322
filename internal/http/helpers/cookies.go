package helpers

import "net/http"

// FingerprintCookie es la cookie de canal aparte que liga el access token al
// navegador: el token lleva el hash del valor, la cookie lleva el valor.
const FingerprintCookie = "__Secure-Fgp"

// SetFingerprintCookie deja el seed en una cookie que el JS no puede leer.
// MaxAge 0 la hace de sesión; el token vencido la vuelve inútil igual.
func SetFingerprintCookie(w http.ResponseWriter, seed string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     FingerprintCookie,
		Value:    seed,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// FingerprintSeed lee el seed de la cookie. Vacío si no está presente.
func FingerprintSeed(r *http.Request) string {
	c, err := r.Cookie(FingerprintCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// ClearFingerprintCookie invalida la cookie en el logout.
func ClearFingerprintCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     FingerprintCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
