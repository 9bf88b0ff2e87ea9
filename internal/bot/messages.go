package bot

import "fmt"

// Canned customer-facing messages. The exact wording, emoji, URLs and phone
// numbers are load-bearing: downstream tests and the printed menu materials
// assert on these literals, so edits here are customer-visible changes.

// WelcomeMessage is the full business card shown on any greeting.
func WelcomeMessage() string {
	return `🌟 *¡Hola! Bienvenido a Sharicrepas!* 😊

Podrás realizar tu pedido:
📱 6862584142 o en nuestra página
https://www.facebook.com/ShariCrepas/

*🕒 Nuestro horario:*
De jueves a martes
🌟 4:00 pm a 11:00 pm 🕚
‼️🔒 Cerrado los miércoles 🔒‼️

*🗒️ Nuestro menú:*
👉 https://wa.me/c/5216862584142

*📌 Nuestra ubicación:*
💛 Local amarillo⭐, junto asadero Sonora y papelería esro
📍 Ab 13 septiembre y av girasoles
🗺️ https://maps.app.goo.gl/Ry67QEz6tMjaZVMGA

*📱 ¿En qué puedo ayudarte?*
• Escribe *"pedido"* para hacer un pedido
• Escribe *"ubicacion"* para ver nuestra ubicación
• Escribe *"horarios"* para ver nuestros horarios
• Escribe *"menu"* para ver nuestro catálogo`
}

// MenuMessage summarizes the menu and links the WhatsApp catalog.
func MenuMessage() string {
	return `🍽️ *Nuestro Menú Completo*

👉 *Ver catálogo completo:*
https://wa.me/c/5216862584142

*🥞 Especialidades:*
• Crepas dulces y saladas
• Waffles artesanales

*☕ Bebidas:*
• Cafés fríos
• Frappes

*🍔 Comida:*
• Nachos
• Boneless
• Papas y aros de cebolla
• Hot dogs gourmet
• Hamburguesas
• Banderillas estilo coreano
• Charolas especiales

💡 *Tip:* Usa el catálogo para ver fotos y precios actualizados`
}

// OrderOptionsMessage presents the three numbered ordering choices.
func OrderOptionsMessage() string {
	return `📝 *¿Listo para ordenar?*

*🛒 Opciones para pedido:*

1️⃣ *Catálogo WhatsApp:*
   👉 https://wa.me/c/5216862584142
   ✅ Ve fotos, precios y descripción completa

2️⃣ *Dime tu pedido:*
   📱 Escribe lo que quieres y te ayudo a tomarlo

3️⃣ *Llama directamente:*
   📞 6862584142

*🚗 Modalidades:*
• 🏠 Para llevar
• 🍽️ Comer en el local

¿Qué prefieres?`
}

// LocationMessage describes where the shop is.
func LocationMessage() string {
	return `📌 *Nuestra Ubicación*

💛 *Local amarillo⭐*
📍 Junto asadero Sonora y papelería esro
🛣️ Ab 13 septiembre y av girasoles

🗺️ *Ver en Google Maps:*
https://maps.app.goo.gl/Ry67QEz6tMjaZVMGA

*🕒 Horarios:*
De jueves a martes: 4:00 pm - 11:00 pm
‼️ Cerrado los miércoles`
}

// ScheduleMessage lists the opening hours.
func ScheduleMessage() string {
	return `🕒 *Nuestros Horarios*

*📅 Abierto:*
Jueves a Martes
🌟 4:00 pm a 11:00 pm 🕚

*🔒 Cerrado:*
‼️ Miércoles (día de descanso)

📱 *Contacto:*
6862584142

💡 *¡Te esperamos!* Los fines de semana tenemos más variedad`
}

// ContactMessage lists phone, social media and catalog links.
func ContactMessage() string {
	return `📞 *Contacto Sharicrepas*

*📱 WhatsApp/Teléfono:*
6862584142

*🌐 Redes sociales:*
📘 https://www.facebook.com/ShariCrepas/

*🗒️ Menú completo:*
https://wa.me/c/5216862584142

*📌 Ubicación:*
💛 Local amarillo⭐
https://maps.app.goo.gl/Ry67QEz6tMjaZVMGA`
}

// HelpMessage lists the recognized commands.
func HelpMessage() string {
	return `❓ *¿Cómo puedo ayudarte?*

*🤖 Comandos disponibles:*
• *"hola"* - Mensaje de bienvenida
• *"menu"* - Ver nuestro catálogo
• *"pedido"* - Realizar un pedido
• *"ubicacion"* - Ver dónde estamos
• *"horarios"* - Ver horarios de atención
• *"contacto"* - Información de contacto
• *"ayuda"* - Esta ayuda

*💡 Tips:*
• Puedes escribir de manera natural
• También respondo a variaciones como "menú", "ubicación", etc.
• Para pedidos específicos, usa nuestro catálogo: https://wa.me/c/5216862584142`
}

// OutOfHoursMessage replaces the welcome text when the shop is closed.
func OutOfHoursMessage() string {
	return `🔒 *¡Ups! Estamos cerrados*

*🕒 Horario actual:*
De jueves a martes: 4:00 pm - 11:00 pm
‼️ Miércoles: CERRADO

*📱 Puedes:*
• Ver el menú: https://wa.me/c/5216862584142
• Revisar nuestra ubicación
• Seguirnos en Facebook: https://www.facebook.com/ShariCrepas/

*¡Te esperamos en nuestro horario de atención!* 🌟`
}

// CatalogOptionMessage answers choice 1 of the ordering options.
func CatalogOptionMessage() string {
	return `🛒 *Perfecto! Usa nuestro catálogo:*

👉 https://wa.me/c/5216862584142

💡 *Ahí puedes:*
• Ver todas las fotos
• Leer descripciones completas
• Ver precios actualizados
• Hacer tu pedido directamente

Una vez que hagas tu pedido, ¡te confirmaremos todo! 😊`
}

// TakingOrderPrompt answers choice 2 and opens the two-turn capture.
func TakingOrderPrompt() string {
	return `📝 *¡Perfecto! Te ayudo a tomar tu pedido*

*🍽️ ¿Qué te gustaría ordenar?*

Tenemos:
• 🥞 Crepas dulces y saladas
• 🧇 Waffles
• ☕ Bebidas (cafés, frappes)
• 🍔 Hamburguesas y hot dogs
• 🍗 Boneless y nachos
• 🍟 Papas y aros
• 🍢 Banderillas coreanas
• 🍽️ Charolas especiales

*Escribe tu pedido:*`
}

// CallOptionMessage answers choice 3 of the ordering options.
func CallOptionMessage() string {
	return `📞 *¡Excelente opción!*

*Llámanos directamente:*
📱 6862584142

*Horario de atención:*
🕒 Jueves a martes: 4:00 pm - 11:00 pm
🔒 Cerrado los miércoles

¡Te atenderemos con mucho gusto! 😊`
}

// OrderingRepromptMessage re-lists the three options after unclear input.
func OrderingRepromptMessage() string {
	return `❓ *No entendí tu opción*

*Elige una opción:*
1️⃣ Usar catálogo online
2️⃣ Que te ayude a tomar el pedido
3️⃣ Llamar por teléfono

O escribe *"menu"* para ver qué vendemos`
}

// OrderNotedMessage acknowledges the order text and asks for a name.
func OrderNotedMessage(orderDetails string) string {
	return fmt.Sprintf(`✅ *Anotado tu pedido:*
"%s"

👤 *¿Cómo te llamas?*
(Para confirmar tu pedido)`, orderDetails)
}

// OrderConfirmationMessage is sent once the order record is persisted.
func OrderConfirmationMessage(customerName, orderDetails string) string {
	return fmt.Sprintf(`✅ *Pedido Recibido*

👤 *Cliente:* %s

📝 *Tu pedido:*
%s

*⏰ Tiempo estimado:* 15-20 minutos

*📞 Nos comunicaremos contigo:*
6862584142

*📌 ¿Dónde recoger?*
💛 Local amarillo⭐ - Ab 13 septiembre y av girasoles

¡Gracias por elegir Sharicrepas! 😊🌟`, customerName, orderDetails)
}

// OrderNumberSuffix is appended to the confirmation once a number is assigned.
func OrderNumberSuffix(orderNumber string) string {
	return fmt.Sprintf("\n\n📋 *Número de pedido:* %s", orderNumber)
}

// OrderErrorMessage is sent when order persistence fails.
func OrderErrorMessage() string {
	return `❌ Hubo un error procesando tu pedido. Por favor llámanos al 6862584142`
}

// UnknownMessage is the deterministic fallback for unrecognized input.
func UnknownMessage() string {
	return `❓ *No entendí tu mensaje*

*💡 Prueba con:*
• *"hola"* - Para empezar
• *"menu"* - Ver nuestro catálogo
• *"pedido"* - Hacer un pedido
• *"ubicacion"* - Dónde estamos
• *"horarios"* - Cuándo abrimos
• *"ayuda"* - Ver todas las opciones

O simplemente dime qué necesitas de forma natural 😊

*📱 También puedes:*
• Ver catálogo: https://wa.me/c/5216862584142
• Llamarnos: 6862584142`
}

// ProcessingErrorMessage is the best-effort fallback when a turn fails.
func ProcessingErrorMessage() string {
	return `Lo siento, hubo un error. Intenta de nuevo o llámanos al 6862584142`
}
