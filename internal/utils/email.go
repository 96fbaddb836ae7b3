package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"pawcare_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

// SendInvoiceEmail envoie la facture par e-mail, avec le PDF en pièce
// jointe si disponible. Un échec ici ne remet jamais en cause le statut
// de la facture, le handler se contente de logger.
func SendInvoiceEmail(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@pawcare.app"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("facture_pawcare.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// GenerateInvoiceHTML génère le corps HTML de l'e-mail de facture
func GenerateInvoiceHTML(invoice models.Invoice, clientName string) string {
	discountRow := ""
	if invoice.DiscountAmount > 0 {
		discountRow = fmt.Sprintf(`
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd;">Remise</td>
					<td style="padding: 10px; border: 1px solid #ddd;">-%.2f€</td>
				</tr>`, invoice.DiscountAmount)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Votre facture PawCare</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Facture %s</h2>
		<p>Bonjour %s,</p>
		<p>Votre garde est terminée, voici le détail de votre facture.</p>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tbody>
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd;">Prestation</td>
					<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
				</tr>
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd;">Frais de service</td>
					<td style="padding: 10px; border: 1px solid #ddd;">%.2f€</td>
				</tr>%s
			</tbody>
			<tfoot>
				<tr>
					<td style="padding: 10px; font-weight: bold;">Total</td>
					<td style="padding: 10px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>

		<p style="color: #555;">Échéance : %s</p>

		<p style="margin-top: 30px; color: #555;">
			À bientôt,<br>
			<strong>L'équipe PawCare</strong>
		</p>
	</div>
</body>
</html>`, invoice.InvoiceNumber, clientName, invoice.Subtotal, invoice.PlatformFee,
		discountRow, invoice.Total, invoice.DueDate.Format("02/01/2006"))
}

// GenerateBookingConfirmationHTML génère l'e-mail de confirmation de réservation
func GenerateBookingConfirmationHTML(booking models.Booking, sitterName string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Réservation confirmée</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Réservation confirmée 🐾</h2>
		<p>%s a confirmé votre réservation.</p>
		<p>Du %s au %s — %.2f€</p>
		<p style="margin-top: 30px; color: #555;">
			À bientôt,<br>
			<strong>L'équipe PawCare</strong>
		</p>
	</div>
</body>
</html>`, sitterName,
		booking.StartTime.Format("02/01/2006 15:04"),
		booking.EndTime.Format("02/01/2006 15:04"),
		booking.TotalPrice)
}
