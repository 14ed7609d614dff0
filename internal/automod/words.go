package automod

// Banned words every new guild starts with
var DefaultBannedWords = []string{
	"arse", "arsehole", "ass", "asshole", "a$$", "a$$hole", "bastard", "bitch", "b!tch",
	"bollocks", "bugger", "cock", "c0ck", "crap", "cunt", "c*nt", "damn", "dick", "d!ck",
	"dickhead", "dipshit", "dumbass", "fag", "faggot", "fuck", "f*ck", "f@ck", "fck",
	"jackass", "motherfucker", "piss", "prick", "pussy", "retard", "shit", "sh!t", "sh*t",
	"shithead", "slut", "son of a bitch", "son of a whore", "twat", "wanker", "whore",
}
