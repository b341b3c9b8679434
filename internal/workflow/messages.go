package workflow

import "fmt"

// Button data tokens. These are the opaque values round-tripped through
// the messaging channel's inline keyboards.
const (
	btnStartInsurance  = "start_insurance"
	btnConfirmPassport = "confirm_passport"
	btnPassportRetake  = "passport_retake"
	btnConfirmVehicle  = "confirm_vehicle"
	btnVehicleRetake   = "vehicle_retake"
	btnPriceAgree      = "price_agree"
	btnPriceDisagree   = "price_disagree"
	btnAIQuestion      = "ai_question"
	btnContinue        = "continue_process"
	btnCancel          = "cancel_application"
)

// Commands understood by the bot.
const (
	cmdStart = "start"
	cmdAI    = "ai"
)

// MsgPhotoFailed is sent when a photo cannot be fetched or the extraction
// service fails. Exported because the channel adapter uses it for download
// failures too.
const MsgPhotoFailed = "❌ Failed to process image. Try again."

const (
	msgAskPrompt          = "💬 What would you like to ask?"
	msgPassportStep       = "📄 Step 1: Upload your *passport photo* (main page)."
	msgPassportAgain      = "📄 Please upload your *passport photo* (main page)."
	msgVehicleStep        = "🚙 Step 2: Upload your *vehicle registration document*."
	msgVehicleAgain       = "🚙 Please upload your *vehicle registration document*."
	msgProcessingPassport = "🔍 Processing passport..."
	msgProcessingVehicle  = "🔍 Processing vehicle document..."
	msgConfirmData        = "Is this information correct?"
	msgPaymentConfirmed   = "✅ Payment confirmed! Generating policy..."
	msgPolicyFailed       = "⚠️ Failed to generate policy text."
	msgAIFailed           = "⚠️ Could not get a response from the assistant. Please try again."
	msgContinuing         = "✅ Continuing your process..."
	msgStartOver          = "🚗 You can type /start to begin again."
	msgCanceled           = "🚫 You canceled the process."
)

func welcomeMessage(price string) string {
	return fmt.Sprintf(`🚗 *Welcome to Car Insurance Bot!*

I'll help you get your car insured in minutes using AI document recognition.

I'll need:
📄 Your *passport photo*
🚙 Your *vehicle registration document*

💰 Fixed insurance cost: *%s*

You can ask me *any question anytime*, and I'll reply instantly.

Ready to begin?`, price)
}

func quotationMessage(price string) string {
	return fmt.Sprintf("💵 Insurance Price Quotation\nThe fixed price is *%s*. Do you agree?", price)
}

func resumeQuotationMessage(price string) string {
	return fmt.Sprintf("💵 The fixed price is *%s*. Do you agree?", price)
}

func priceOnlyMessage(price string) string {
	return fmt.Sprintf("❌ Sorry! %s is the only available price.", price)
}

func welcomeKeyboard() [][]Button {
	return [][]Button{
		{{Label: "🚀 Start Application", Data: btnStartInsurance}},
		{{Label: "💬 Ask AI a question", Data: btnAIQuestion}},
	}
}

// confirmKeyboard is offered after every document extraction.
func confirmKeyboard(confirmData, retakeData string) [][]Button {
	return [][]Button{
		{{Label: "✅ Correct", Data: confirmData}},
		{{Label: "❌ Retake", Data: retakeData}},
		{{Label: "💬 Ask AI", Data: btnAIQuestion}},
	}
}

func quotationKeyboard() [][]Button {
	return [][]Button{
		{{Label: "✅ Agree", Data: btnPriceAgree}},
		{{Label: "❌ Disagree", Data: btnPriceDisagree}},
		{{Label: "💬 Ask AI", Data: btnAIQuestion}},
	}
}

func disagreeKeyboard() [][]Button {
	return [][]Button{
		{{Label: "✅ Agree", Data: btnPriceAgree}},
		{{Label: "❌ Exit", Data: btnCancel}},
		{{Label: "💬 Ask AI", Data: btnAIQuestion}},
	}
}

func resumeQuotationKeyboard() [][]Button {
	return [][]Button{
		{{Label: "✅ Agree", Data: btnPriceAgree}},
		{{Label: "❌ Disagree", Data: btnPriceDisagree}},
	}
}

func aiFollowupKeyboard() [][]Button {
	return [][]Button{
		{{Label: "💬 Ask another question", Data: btnAIQuestion}},
		{{Label: "▶ Continue", Data: btnContinue}},
	}
}
