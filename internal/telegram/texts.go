package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

// UI texts in English
const (
	startText = "👋 I am Selfcare Sidekick, a gamified self-care assistant.\n\n" +
		"Use /register to get started. I will send you a plan every morning at 8:00, " +
		"a summary every night at 23:00 and a weekly recap on Fridays at 17:00 in your time zone."
	helpText = "Commands:\n" +
		"/register - sign up and pick your daily tasks\n" +
		"/list - today's tasks\n" +
		"/complete 1,3,5 - mark tasks as done\n" +
		"/add daily|weekly[:points] <description> - add a custom task\n" +
		"/remove - remove a custom task\n" +
		"/points - your points\n" +
		"/journal - a daily journal prompt\n" +
		"/buddy - invite an accountability buddy\n" +
		"/settimezone [Region/City] - set your time zone\n" +
		"/pause, /unpause - stop or resume reminders\n" +
		"/crisis - support resources\n" +
		"/deregister - delete all your data"

	notRegisteredText   = "You are not registered. Use /register to get started."
	alreadyRegistered   = "You are already registered."
	storageErrorText    = "Something went wrong while saving. Please try again later."
	privateOnlyText     = "Please message me privately so we can keep this between us."
	askNameText         = "Welcome to Selfcare Sidekick! What would you like to be called? Please reply with your preferred name."
	askTZText           = "Please select your time zone below, or type one (e.g., Europe/Paris):"
	noTZText            = "No time zone selected. You can set your time zone later with /settimezone."
	registerTimeoutText = "Registration timed out. Please try again with /register."
	journalIntroFmt     = "Journaling Prompt: %s\n\n" +
		"If you chose 'Your own prompt', just write about a topic of your choice.\n" +
		"Please write your journal entry and send it as a message here.\n\n" +
		"Note: Your journal entry is private between you and the bot and is not stored anywhere."
	journalDoneFmt      = "Thank you for journaling! You've been awarded %d points for today."
	journalTimeoutText  = "Journal entry timed out. Please try again later when you have a moment."
	journalAlreadyText  = "You've already journaled today. Try again tomorrow!"
	deregisterAskText   = "WARNING: This will permanently remove all your data. If you register again, you will start over.\nPlease confirm by replying with 'yes'."
	deregisterDoneText  = "Your data has been permanently removed. We're sorry to see you go!"
	deregisterStopText  = "Deregistration cancelled."
	buddyIssuedFmt      = "Your buddy request code is %s. Share this code with someone you trust. They have %s to DM me this code to become your accountability buddy."
	buddyPendingFmt     = "You already have a pending buddy code: %s. Wait for it to be used or to expire."
	noCustomText        = "You have no custom tasks to remove."
	removeTimeoutText   = "Task removal timed out."
	completeAskText     = "Reply with the numbers of the tasks you completed, separated by commas (e.g., 6,7,8)."
	completeTimeoutText = "No tasks selected. Use /complete 1,2,3 any time."
	unknownText         = "I didn't get that. Use /help to see what I can do."
	answerPromptText    = "Please answer the question above first."
)

// mainMenuKeyboard builds a reply keyboard with the everyday commands and a
// single toggle button: "/pause" while active, "/unpause" while paused.
func mainMenuKeyboard(paused bool) tgbotapi.ReplyKeyboardMarkup {
	toggle := "/pause"
	if paused {
		toggle = "/unpause"
	}
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/list"),
			tgbotapi.NewKeyboardButton("/points"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/journal"),
			tgbotapi.NewKeyboardButton(toggle),
		),
	)
}

const (
	tzPrefix = "tz:"
	tzSkip   = tzPrefix + "skip"
)

// tzPresetsKeyboard lists the preset zones two per row. withSkip adds a
// "Skip" button used during registration.
func tzPresetsKeyboard(withSkip bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	presets := domain.TimezonePresets()
	for i := 0; i < len(presets); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(presets[i].Label, tzPrefix+presets[i].Zone),
		}
		if i+1 < len(presets) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(presets[i+1].Label, tzPrefix+presets[i+1].Zone))
		}
		rows = append(rows, row)
	}
	if withSkip {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Skip", tzSkip),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
