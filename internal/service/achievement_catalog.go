package service

import "lingua_edu_backend/internal/model"

// 成就加载失败时的内置样例，保证界面始终有内容可展示
var sampleAchievements = []model.Achievement{
	{
		ID: "first_lesson", Category: "learning", Name: "First Steps",
		Description: "Complete your first lesson", Icon: "📘",
		Target: 1, Points: 10,
		ActivityType: "lesson_completed", Criterion: model.CriterionCount, RequiredCount: 1,
	},
	{
		ID: "lessons_25", Category: "learning", Name: "Dedicated Learner",
		Description: "Complete 25 lessons", Icon: "🎓",
		Target: 25, Points: 50,
		ActivityType: "lesson_completed", Criterion: model.CriterionCount, RequiredCount: 25,
	},
	{
		ID: "vocab_100", Category: "learning", Name: "Word Collector",
		Description: "Learn 100 words", Icon: "📝",
		Target: 100, Points: 40,
		ActivityType: "words_learned", Criterion: model.CriterionThreshold, Threshold: 100,
	},
	{
		ID: "streak_7", Category: "learning", Name: "Week Warrior",
		Description: "Study 7 days in a row", Icon: "🔥",
		Target: 7, Points: 30,
		ActivityType: "study_streak", Criterion: model.CriterionStreak, RequiredStreak: 7,
	},
	{
		ID: "first_win", Category: "games", Name: "Game On",
		Description: "Win your first game", Icon: "🎮",
		Target: 1, Points: 10,
		ActivityType: "game_won", Criterion: model.CriterionCount, RequiredCount: 1,
	},
	{
		ID: "high_score", Category: "games", Name: "High Scorer",
		Description: "Score 1000 points in a single game", Icon: "🏆",
		Target: 1000, Points: 25,
		ActivityType: "game_score", Criterion: model.CriterionThreshold, Threshold: 1000,
	},
	{
		ID: "first_friend", Category: "social", Name: "Study Buddy",
		Description: "Add your first friend", Icon: "🤝",
		Target: 1, Points: 10,
		ActivityType: "friend_added", Criterion: model.CriterionCount, RequiredCount: 1,
	},
	{
		ID: "helper_10", Category: "social", Name: "Helping Hand",
		Description: "Answer 10 community questions", Icon: "💬",
		Target: 10, Points: 20,
		ActivityType: "question_answered", Criterion: model.CriterionCount, RequiredCount: 10,
	},
}

// SampleAchievements 返回样例目录的副本
func SampleAchievements() model.AchievementGroups {
	return model.GroupAchievements(sampleAchievements).Clone()
}
