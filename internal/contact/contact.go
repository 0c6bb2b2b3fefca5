package contact

import (
	"fmt"
	"net/url"
	"strings"
)

type Info struct {
	WhatsAppNumber string
	Email          string
}

type Links struct {
	WhatsApp string `json:"whatsapp_url"`
	Mailto   string `json:"mailto_url"`
}

// WhatsAppURL and MailtoURL encode spaces as %20; mail clients do not decode '+'.
func WhatsAppURL(number, message string) string {
	return "https://wa.me/" + number + "?text=" + encode(message)
}

func MailtoURL(email, subject, body string) string {
	q := "subject=" + encode(subject)
	if body != "" {
		q += "&body=" + encode(body)
	}
	return "mailto:" + email + "?" + q
}

func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (i Info) ForProduct(title, categoria string) Links {
	body := fmt.Sprintf("Hola,\n\nEstoy interesado en obtener más información sobre el producto: %s\n\nCategoría: %s\n\nGracias.", title, categoria)
	return Links{
		WhatsApp: WhatsAppURL(i.WhatsAppNumber, "Hola, estoy interesado en el producto: "+title),
		Mailto:   MailtoURL(i.Email, "Consulta sobre: "+title, body),
	}
}

type ServiceInquiry struct {
	TipoServicio    string
	SubtipoServicio string
	Nombre          string
	ApellidoPaterno string
	ApellidoMaterno string
	Email           string
	Telefono        string
	NombreEmpresa   string
	Ubicacion       string
	Comentarios     string
}

func (s ServiceInquiry) fullName() string {
	return strings.TrimSpace(strings.Join([]string{s.Nombre, s.ApellidoPaterno, s.ApellidoMaterno}, " "))
}

func (s ServiceInquiry) Body() string {
	comentarios := s.Comentarios
	if comentarios == "" {
		comentarios = "N/A"
	}

	var b strings.Builder
	b.WriteString("Solicitud de Servicio - M-C Consultoría\n\n")
	fmt.Fprintf(&b, "TIPO DE SERVICIO:\n%s: %s\n\n", s.TipoServicio, s.SubtipoServicio)
	b.WriteString("DATOS DE CONTACTO:\n")
	fmt.Fprintf(&b, "Nombre: %s\n", s.fullName())
	fmt.Fprintf(&b, "Email: %s\n", s.Email)
	fmt.Fprintf(&b, "Teléfono: %s\n\n", s.Telefono)
	b.WriteString("DATOS DE EMPRESA:\n")
	fmt.Fprintf(&b, "Nombre de empresa: %s\n", s.NombreEmpresa)
	fmt.Fprintf(&b, "Ubicación: %s\n\n", s.Ubicacion)
	fmt.Fprintf(&b, "COMENTARIOS ADICIONALES:\n%s\n\n", comentarios)
	b.WriteString("---\nEste mensaje fue generado desde el sitio web de M-C Consultoría.")
	return b.String()
}

func (i Info) ForService(s ServiceInquiry) Links {
	subject := fmt.Sprintf("Solicitud de %s: %s", s.TipoServicio, s.SubtipoServicio)
	msg := fmt.Sprintf("Hola, estoy interesado en el servicio: %s - %s", s.TipoServicio, s.SubtipoServicio)
	return Links{
		WhatsApp: WhatsAppURL(i.WhatsAppNumber, msg),
		Mailto:   MailtoURL(i.Email, subject, s.Body()),
	}
}
