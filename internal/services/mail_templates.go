package services

import (
	"fmt"
	"time"
)

func registrationMail(name, company, email string) (string, string) {
	subject := "Bienvenido a GreenIA"
	body := fmt.Sprintf(`Hola %s,

Tu empresa %s quedó registrada en GreenIA.
Puedes iniciar sesión como administrador con el correo %s.

Equipo GreenIA`, name, company, email)
	return subject, body
}

func welcomeUserMail(name, email, password string) (string, string) {
	subject := "Tu cuenta GreenIA"
	body := fmt.Sprintf(`Hola %s,

Tu administrador creó una cuenta para ti en GreenIA.

Correo: %s
Contraseña: %s

Te recomendamos cambiar la contraseña después de tu primer inicio de sesión.

Equipo GreenIA`, name, email, password)
	return subject, body
}

func resetMail(link string, ttl time.Duration) (string, string) {
	subject := "Recuperación de contraseña - GreenIA"
	body := fmt.Sprintf(`Recibimos una solicitud para restablecer tu contraseña.

Abre el siguiente enlace para continuar:
%s

El enlace expira en %s. Si no solicitaste el cambio, ignora este correo.

Equipo GreenIA`, link, humanTTL(ttl))
	return subject, body
}

func humanTTL(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%d horas", int(d.Hours()))
	}
	return fmt.Sprintf("%d minutos", int(d.Minutes()))
}
