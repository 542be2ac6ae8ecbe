package dal

import (
	"time"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

func seedBatter(id, name, pos string, star bool, hit, pwr, spd, def, arm int) models.Player {
	return models.Player{
		ID: id, Name: name, Position: pos, IsStar: star,
		Attrs: models.Attributes{Hit: hit, Pwr: pwr, Spd: spd, Def: def, Arm: arm},
	}
}

func seedPitcher(id, name string, star bool, pit, def, arm int) models.Player {
	return models.Player{
		ID: id, Name: name, Position: "P", IsPitcher: true, IsStar: star,
		Attrs: models.Attributes{Hit: 25, Pwr: 25, Spd: 35, Def: def, Arm: arm, Pit: pit},
	}
}

func getDefaultTeams() []models.Team {
	now := time.Now().UnixMilli()
	return []models.Team{
		{
			ID: "1", Name: "Ironhawks", City: "Harbor City", Stadium: "Foundry Field",
			HomeAdvantage: 52, Colors: [3]string{"#1f2a44", "#c0c5ce", "#e63946"},
			CreatedAt: now, UpdatedAt: now,
			Players: []models.Player{
				seedBatter("1-1", "Marcus Vale", "CF", true, 82, 64, 88, 74, 70),
				seedBatter("1-2", "Reggie Okafor", "SS", false, 71, 52, 76, 80, 78),
				seedBatter("1-3", "Dane Whitfield", "1B", true, 76, 86, 42, 60, 55),
				seedBatter("1-4", "Tomas Ibarra", "3B", false, 68, 72, 55, 71, 82),
				seedBatter("1-5", "Casey Lindqvist", "C", false, 62, 58, 35, 77, 84),
				seedBatter("1-6", "Jalen Brooks", "LF", false, 70, 66, 72, 58, 61),
				seedBatter("1-7", "Sam Carrick", "2B", false, 66, 45, 68, 73, 64),
				seedBatter("1-8", "Avery Donahue", "RF", false, 64, 70, 60, 62, 79),
				seedBatter("1-9", "Pete Rosales", "DH", false, 72, 75, 40, 40, 42),
				seedPitcher("1-10", "Koji Maruyama", true, 84, 58, 72),
				seedPitcher("1-11", "Bo Fenwick", false, 68, 52, 66),
			},
		},
		{
			ID: "2", Name: "Comets", City: "Riverton", Stadium: "Apex Park",
			HomeAdvantage: 50, Colors: [3]string{"#0b3d91", "#f4a31d", "#ffffff"},
			CreatedAt: now, UpdatedAt: now,
			Players: []models.Player{
				seedBatter("2-1", "Dev Ramanathan", "2B", true, 84, 55, 80, 76, 65),
				seedBatter("2-2", "Hollis Grant", "CF", false, 70, 60, 85, 72, 68),
				seedBatter("2-3", "Mickey Soto", "RF", true, 74, 82, 58, 61, 83),
				seedBatter("2-4", "Linus Achterberg", "1B", false, 69, 78, 38, 63, 50),
				seedBatter("2-5", "Quincy Mabry", "SS", false, 65, 48, 74, 81, 76),
				seedBatter("2-6", "Rafael Duarte", "3B", false, 67, 69, 52, 70, 80),
				seedBatter("2-7", "Shane Okabe", "C", false, 60, 56, 33, 79, 85),
				seedBatter("2-8", "Wes Tanner", "LF", false, 66, 63, 70, 57, 60),
				seedBatter("2-9", "Gus Pelletier", "DH", false, 71, 73, 36, 38, 40),
				seedPitcher("2-10", "Anton Vesely", true, 82, 55, 70),
				seedPitcher("2-11", "Harley Strand", false, 70, 50, 64),
			},
		},
		{
			ID: "3", Name: "Sandcats", City: "Mesa Verde", Stadium: "Dune Diamond",
			HomeAdvantage: 48, Colors: [3]string{"#b35a1f", "#f2d0a4", "#3a2d24"},
			CreatedAt: now, UpdatedAt: now,
			Players: []models.Player{
				seedBatter("3-1", "Felix Navarro", "SS", true, 80, 58, 83, 82, 74),
				seedBatter("3-2", "Judd Calloway", "1B", false, 68, 80, 35, 59, 48),
				seedBatter("3-3", "Omar Haddad", "CF", false, 72, 57, 86, 73, 66),
				seedBatter("3-4", "Ty Beaumont", "LF", false, 69, 71, 64, 55, 58),
				seedBatter("3-5", "Nolan Pryce", "3B", false, 64, 68, 50, 72, 81),
				seedBatter("3-6", "Iggy Kowalczyk", "C", false, 58, 60, 30, 78, 86),
				seedBatter("3-7", "Drew Santiago", "2B", false, 67, 46, 71, 74, 62),
				seedBatter("3-8", "Brock Ellison", "RF", false, 63, 74, 56, 60, 77),
				seedBatter("3-9", "Vic Moreau", "DH", false, 70, 76, 34, 36, 41),
				seedPitcher("3-10", "Sal Dimeo", false, 78, 56, 69),
				seedPitcher("3-11", "Curt Yarborough", false, 66, 49, 63),
			},
		},
		{
			ID: "4", Name: "Monarchs", City: "Port Laurel", Stadium: "Crown Yards",
			HomeAdvantage: 54, Colors: [3]string{"#4b2e83", "#e8c547", "#111111"},
			CreatedAt: now, UpdatedAt: now,
			Players: []models.Player{
				seedBatter("4-1", "Eli Thackeray", "RF", true, 78, 84, 54, 62, 85),
				seedBatter("4-2", "Moses Adeyemi", "CF", true, 75, 62, 90, 75, 71),
				seedBatter("4-3", "Grady Finch", "1B", false, 70, 77, 39, 64, 52),
				seedBatter("4-4", "Luka Petrovic", "SS", false, 66, 50, 75, 83, 79),
				seedBatter("4-5", "Russ Delgado", "3B", false, 68, 70, 53, 69, 82),
				seedBatter("4-6", "Percy Whitmore", "C", false, 61, 59, 32, 80, 87),
				seedBatter("4-7", "Kip Sandoval", "2B", false, 65, 47, 69, 72, 63),
				seedBatter("4-8", "Joel Brandt", "LF", false, 67, 65, 67, 56, 59),
				seedBatter("4-9", "Art Castellano", "DH", false, 73, 74, 37, 39, 43),
				seedPitcher("4-10", "Dmitri Volkov", true, 86, 57, 73),
				seedPitcher("4-11", "Ray Oyelaran", false, 69, 51, 65),
			},
		},
	}
}
