// Package fixtures holds canned sample essays for trying out the grader without writing one.
package fixtures

import "github.com/noah-isme/gema-essay-api/internal/models"

// SampleTopic is the topic every canned essay was written for.
const SampleTopic = "baseball"

const lowEssay = `Playing on a team in baseball is usefull.

Having a plan can help you be better at other stuff.

You need to focus alot and that helps in school to.`

const mediumEssay = `Playing baseball on a team teaches you how to work with other people and talk to them so everyone knows the plan.

Coming up with strategys in baseball, like when to steal a base, can also help you solve problems in other places like school.`

const highEssay = `Baseball is often called America's pastime, but it is more than a game played on a diamond. The skills it demands, from hand-eye coordination to careful strategy and dependable teamwork, are the same skills that help people succeed far away from the ballpark.

Hand-eye coordination is essential for a batter who has a fraction of a second to meet a fast pitch. That same coordination matters when riding a bike through traffic or catching something before it falls, because the eyes and hands have to work together quickly and safely.

Strategy decides when a runner should steal a base or stay put, and when a pitcher should throw a curveball instead of a fastball. Life asks for the same kind of planning. Deciding which homework to finish first, or saving money for something important, means looking ahead and weighing choices the way a good baseball player does.

Teamwork holds everything together. Nine players each have a job, and the team only wins when everyone does theirs. Group projects at school and chores at home work the same way, because each person's effort adds to what the group can achieve.

In conclusion, baseball is a lesson wrapped in nine innings. Coordination, strategy and teamwork help players hit home runs, and they also help all of us handle the challenges of everyday life.`

var samples = map[models.QualityLevel]string{
	models.QualityLow:    lowEssay,
	models.QualityMedium: mediumEssay,
	models.QualityHigh:   highEssay,
}

// SampleEssay returns the canned essay for quality.
func SampleEssay(quality models.QualityLevel) (string, bool) {
	essay, ok := samples[quality]
	return essay, ok
}
