package render

import (
	"strings"
	"unicode"
)

// themedMessage is one title/description pair from a flavor pool.
type themedMessage struct {
	title       string
	description string
}

func (f *Factory) choose(pool []themedMessage) themedMessage {
	if len(pool) == 0 {
		return themedMessage{"System Message", "Event occurred"}
	}
	return pool[f.pick(len(pool))]
}

func (f *Factory) chooseLine(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[f.pick(len(pool))]
}

// titleCase upper-cases the first letter of each word and replaces
// underscores with spaces ("READY_TO_GO" -> "Ready To Go").
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	var b strings.Builder
	startOfWord := true
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			startOfWord = true
			b.WriteRune(r)
		case startOfWord:
			b.WriteRune(unicode.ToUpper(r))
			startOfWord = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

// Atmospheric one-liners for killfeed descriptions.
var (
	atmosphericKill = []string{
		"> Another heartbeat silenced beneath the ash sky.",
		"> No burial, no name, just silence where a soul once stood.",
		"> Left no echo. Just scattered gear and cooling blood.",
		"> Cut from the world like thread from a fraying coat.",
		"> Marked, hunted, forgotten. In that order.",
		"> Their fire went out before they even knew they were burning.",
		"> A last breath swallowed by wind and war.",
		"> The price of survival paid in someone else's blood.",
		"> The map didn't change. The player did.",
	}
	atmosphericSuicide = []string{
		"> Hit \"relocate\" like it was the snooze button. Got deleted.",
		"> Tactical redeployment... into the abyss.",
		"> Rage respawned and logic respawned with it.",
		"> Wanted a reset. Got a reboot straight to the void.",
		"> Pressed something. Paid everything.",
		"> Who needs enemies when you've got bad decisions?",
		"> Strategic death, poorly executed.",
		"> Fast travel without a destination.",
		"> Confirmed: the dead menu is not a safe zone.",
	}
	atmosphericFall = []string{
		"> Thought they could make it. The ground disagreed.",
		"> Airborne ambition. Terminal results.",
		"> Tried flying. Landed poorly.",
		"> Gravity called. They answered, headfirst.",
		"> Believed in themselves. Gravity didn't.",
		"> From rooftops to regret in under two seconds.",
		"> The sky opened. The floor closed.",
		"> Feet first into a bad decision.",
		"> Their plan had one fatal step too many.",
	}
)

// Themed title/description pools per embed family.
var (
	connectionJoinMessages = []themedMessage{
		{"Reinforcements Arrive", "A new operative has entered the battlefield"},
		{"Squad Member Online", "Fresh backup has joined the mission"},
		{"New Arrival Detected", "Another survivor enters the hostile zone"},
		{"Operative Deployment", "Military personnel now active in the field"},
		{"Backup Has Arrived", "Additional support is now operational"},
		{"Mercenary Activated", "A hired gun has entered the combat zone"},
		{"Combat Unit Online", "Tactical operator is now field-ready"},
		{"Fresh Blood Arrives", "New combatant has entered the warzone"},
		{"Boots on Ground", "Infantry unit has entered the operational area"},
		{"Battle Ready", "New combatant prepared for engagement"},
	}
	connectionLeaveMessages = []themedMessage{
		{"Extraction Confirmed", "Operative has successfully left the battlefield"},
		{"Squad Member Offline", "Team member has concluded their mission"},
		{"Departure Logged", "Fighter has withdrawn from the combat zone"},
		{"Radio Silence", "Communication lost with field operative"},
		{"Tactical Withdrawal", "Strategic retreat executed successfully"},
		{"End of Deployment", "Tour of duty has been concluded"},
		{"Signal Lost", "Connection terminated with field operative"},
		{"Ghost Protocol", "Agent has vanished from the battlefield"},
		{"Stand Down", "Operative has been relieved from active duty"},
		{"Final Transmission", "Last communication received from operative"},
	}
	killfeedKillMessages = []themedMessage{
		{"Hostile Eliminated", "Another survivor has fallen to superior tactics"},
		{"Combat Victory", "The wasteland claims another warrior"},
		{"Kill Confirmed", "Survival of the fittest in action"},
		{"Target Down", "One less threat in the contaminated zone"},
		{"Elimination Recorded", "The strong prey upon the weak"},
		{"Enemy Down", "The apocalypse continues to thin the herd"},
		{"Threat Eliminated", "The wasteland's brutal law prevails"},
		{"Fatal Encounter", "Another casualty of the contaminated world"},
		{"Hostile Terminated", "Enemy combatant permanently neutralized"},
		{"Combat Effective", "Deadly engagement concluded successfully"},
	}
	killfeedSuicideMessages = []themedMessage{
		{"Manual Uninstall", "Someone pressed the wrong button, it didn't end well"},
		{"Critical Error", "Task failed successfully, permanently"},
		{"Self-Service Checkout", "Took the express lane to the afterlife"},
		{"User Malfunction", "Hardware failure: operator not included"},
		{"Oops Moment", "That wasn't the reload button"},
		{"Final Bug Report", "Error 404: Player not found"},
		{"Unscheduled Logout", "Rage quit taken to the extreme"},
		{"Darwin Award", "Natural selection working as intended"},
		{"Operator Error", "RTFM should have been mandatory reading"},
		{"Critical Failure", "Murphy's Law strikes again"},
	}
	killfeedFallMessages = []themedMessage{
		{"Gravity Check Failed", "Physics had different ideas about that flight plan"},
		{"Unexpected Landing", "Ground came up faster than expected"},
		{"Terminal Velocity Achieved", "Discovered the hard way that humans can't fly"},
		{"Altitude Adjustment", "What goes up, comes down... hard"},
		{"Flight Plan Rejected", "Air traffic control: Gravity"},
		{"Rapid Descent Protocol", "Took the scenic route down"},
		{"Uncontrolled Landing", "Forgot to pack a parachute for that trip"},
		{"Ground Impact Event", "Learned that falling with style still hurts"},
		{"Cliff Notes", "Took a shortcut that went straight down"},
		{"Altitude Sickness", "Cure was found at ground level"},
	}
	missionReadyMessages = []themedMessage{
		{"Objective Available", "New tactical mission is ready for deployment"},
		{"Mission Briefing", "High-value target area now accessible"},
		{"Operation Greenlight", "Strategic objective cleared for engagement"},
		{"Target Acquired", "Priority mission zone now active"},
		{"Go Signal Received", "Mission parameters have been established"},
		{"Deployment Authorized", "Tactical operation ready for execution"},
		{"Mission Active", "Strategic objective is now operational"},
		{"Battle Orders", "Tactical engagement zone is active"},
		{"Priority Target", "High-value objective now accessible"},
		{"Combat Assignment", "Tactical mission zone now available"},
	}
	airdropMessages = []themedMessage{
		{"Supply Drop Inbound", "Aerial resupply package approaching"},
		{"Cargo Drop Detected", "Supply aircraft on final approach"},
		{"Air Support Incoming", "Logistics drop confirmed inbound"},
		{"Package Delivery", "High-altitude supply drop initiated"},
		{"Resupply Mission", "Aerial logistics package incoming"},
		{"Sky Delivery", "Supply aircraft making final approach"},
		{"Drop Zone Active", "Supply aircraft approaching designated area"},
		{"Cargo Inbound", "Aerial resupply mission in progress"},
		{"Logistics Drop", "Aerial resupply package incoming"},
		{"Air Supply", "Logistics aircraft inbound with cargo"},
	}
	helicrashMessages = []themedMessage{
		{"Aircraft Down", "Helicopter has crash-landed in the area"},
		{"Emergency Landing", "Rotorcraft made unscheduled ground contact"},
		{"Crash Site Active", "Helicopter wreckage detected"},
		{"Bird Down", "Rotary aircraft suffered catastrophic failure"},
		{"Aviation Incident", "Rotorcraft emergency landing confirmed"},
		{"Chopper Down", "Helicopter crash site now active"},
		{"Rotor Failure", "Helicopter suffered mechanical failure"},
		{"Mayday Situation", "Helicopter emergency landing confirmed"},
		{"Wreckage Detected", "Helicopter debris field located"},
		{"Emergency Touchdown", "Helicopter distress landing completed"},
	}
	traderMessages = []themedMessage{
		{"Black Market Open", "Underground dealer has arrived"},
		{"Merchant Arrival", "Independent trader now conducting business"},
		{"Dealer Active", "Black market vendor is open for trade"},
		{"Trade Opportunity", "Special merchant has arrived"},
		{"Underground Market", "Illegal arms dealer now available"},
		{"Shadow Merchant", "Underground dealer conducting business"},
		{"Arms Dealer Active", "Weapons merchant now available"},
		{"Trade Post Open", "Commercial vendor ready for transactions"},
		{"Merchant Contact", "Underground dealer ready for business"},
		{"Exchange Active", "Underground market now operational"},
	}
	vehicleSpawnMessages = []themedMessage{
		{"Vehicle Deployed", "New transportation asset now available"},
		{"Motor Pool Active", "Vehicle has been deployed to the field"},
		{"Transport Ready", "New vehicle asset operational"},
		{"Wheels Up", "Transportation unit now available"},
		{"Vehicle Online", "Mobile asset deployed and ready"},
		{"Transport Arrival", "New vehicle has entered the battlefield"},
		{"Mobile Unit", "Transportation deployed to combat zone"},
	}
	vehicleDeleteMessages = []themedMessage{
		{"Vehicle Lost", "Transportation asset no longer operational"},
		{"Transport Down", "Vehicle has been removed from service"},
		{"Wheels Down", "Transportation unit out of commission"},
		{"Vehicle Offline", "Mobile asset removed from operation"},
		{"Vehicle Destroyed", "Mobile unit eliminated from service"},
		{"Transport Inactive", "Vehicle asset removed from field"},
		{"Mobile Down", "Transportation no longer operational"},
	}
)
