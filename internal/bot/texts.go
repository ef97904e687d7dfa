package bot

// User-facing texts. The bot speaks Ukrainian; HTML parse mode is used
// everywhere, so dynamic values are escaped before they reach these strings.
const (
	textSubscribeGate  = "📢 Підпишіться на наш канал, щоб продовжити:"
	textSubscribeFirst = "❗ Будь ласка, спочатку підпишіться на канал"
	textCaptchaAsk     = "🔒 Введіть результат: %s = ?"
	textCaptchaPassed  = "✅ Вітаємо! Тепер ви можете користуватися ботом."
	textCaptchaWrong   = "❌ Невірно. Спробуйте ще раз."
	textCaptchaExpired = "❌ Помилка перевірки. Спробуйте /start знову."

	textAskName      = "Привіт! Давайте оформимо замовлення.\nЯк вас звати?"
	textAskNameAgain = "Як вас звати? (лише літери, 2-30 символів)"
	textBadName      = "❗ Будь ласка, введіть коректне ім'я (лише літери, 2-30 символів)"

	textAskPhone = "Ваш номер телефону? Натисніть кнопку або введіть у форматі +380XXXXXXXXX"
	textBadPhone = "❗ Будь ласка, введіть коректний номер телефону (наприклад, +380123456789)"

	textAskItems      = "Що потрібно доставити? Надішліть опис, фото або все разом.\nКоли закінчите, натисніть кнопку \"Це все\" внизу."
	textItemAdded     = "Товар додано. Продовжуйте додавати товари або натисніть \"Це все\"."
	textNoItems       = "❗ Ви не додали жодного товару. Будь ласка, додайте хоча б один товар."
	textTooManyPhotos = "❗ Можна надіслати не більше 25 фото."
	textAddItems      = "Додайте товари:"
	textItemsEmpty    = "Список товарів порожній. Додайте товари:"
	textBadItemIndex  = "❗ Неправильний індекс товару"

	textAskDeliveryMode  = "Відправляєте Ви чи потрібна доставка?"
	textAskPickupAddress = "Введіть адресу відправлення:"
	textAskAddressMethod = "Як ви хочете вказати адресу доставки?"
	textPickAddressHow   = "❗ Будь ласка, оберіть спосіб вказання адреси"
	textAskAddress       = "Введіть адресу доставки:"
	textShortAddress     = "❗ Адреса занадто коротка. Будь ласка, введіть повну адресу"
	textLocationSaved    = "Дякуємо! Ваша геолокація збережена.\nАдреса: %s"

	textAskTime       = "Оберіть час доставки:"
	textAskCustomTime = "Введіть бажаний час доставки (наприклад, 15:00):"
	textBadTime       = "❗ Будь ласка, введіть коректний час (наприклад, 15:00)"

	textAskPayment      = "Оберіть форму оплати:"
	textAskChangeAmount = "З якої суми потрібна решта? (наприклад, 500 грн)"
	textBadChangeAmount = "❗ Будь ласка, введіть суму цифрами (наприклад, 500)"

	textAskPromo = "Введіть промокод:"

	textCancelled      = "Замовлення скасовано."
	textSubmitted      = "Дякуємо! Ваше замовлення оформлено. Очікуйте підтвердження."
	textSubmittedPromo = "✅ Дякуємо! Ваше замовлення з промокодом \"%s\" оформлено. Очікуйте підтвердження."
	textIncomplete     = "❗ Замовлення неповне. Додайте товари та спробуйте ще раз."
	textUnexpected     = "❗ Скористайтеся кнопками нижче."
	textOops           = "❌ Сталася помилка. Спробуйте ще раз."

	textThrottled = "❗ Занадто багато запитів. Спробуйте через %d сек."

	textIdleHint = "Натисніть кнопку нижче або введіть /start, щоб оформити замовлення."
	textHelp     = "Цей бот приймає замовлення на доставку.\n\nНадішліть /start, пройдіть коротку перевірку і заповніть форму: ім'я, телефон, товари, адреса, час та форма оплати. Після підтвердження менеджер зв'яжеться з вами."

	textOrderAccepted       = "✅ Ваше замовлення #%s прийнято в обробку!\n\nОчікуйте дзвінка від нашого менеджера для підтвердження деталей."
	textOrderAcceptedBanner = "\n\n✅ <b>ЗАМОВЛЕННЯ ПРИЙНЯТЕ</b>"

	textAdminPanel      = "👨‍💻 <b>Адмін панель</b>"
	textAdminNoAccess   = "⛔ У вас немає доступу до цієї команди"
	textAdminPaused     = "⏸️ Бот призупинено"
	textAdminResumed    = "▶️ Бот запущено"
	textAdminStopping   = "⏹️ Бот зупиняється..."
	textBlacklistEmpty  = "📋 <b>Чорний список порожній</b>\n\nДодайте користувача командою /ban <id>"
	textBlacklistHeader = "📋 <b>Чорний список:</b>\n\n"

	textStartupNotice  = "🟢 Бот запущений"
	textShutdownNotice = "🔴 Бот зупиняється"
)

// Reply-keyboard button labels double as control phrases: pressing a reply
// button delivers its label as a plain text message.
const (
	btnNewOrder      = "🛍️ Оформити нове замовлення"
	btnDone          = "✅ Це все"
	btnCancel        = "❌ Скасувати замовлення"
	btnSharePhone    = "📱 Надіслати номер телефону"
	btnManualAddress = "✍️ Ввести адресу вручну"
	btnShareLocation = "📍 Поділитися геолокацією"
)
