package content

import "fmt"

// KeyPoints returns the five templated key points for a module. They depend
// only on role and subject, never on generated text.
func KeyPoints(role Role, subject string) []string {
	switch role {
	case RoleIntroduction:
		return []string{
			fmt.Sprintf("Understanding %s fundamentals and core concepts", subject),
			"Setting clear learning objectives and success metrics",
			"Preparing tools and resources for effective learning",
			"Establishing a solid foundation for advanced topics",
			"Creating a personalized learning path and strategy",
		}
	case RoleFundamentals:
		return []string{
			fmt.Sprintf("Mastering %s principles and methodologies", subject),
			"Applying key frameworks and decision-making tools",
			"Understanding industry best practices and standards",
			"Developing critical thinking and analysis skills",
			"Building theoretical foundation for practical application",
		}
	case RolePractical:
		return []string{
			fmt.Sprintf("Hands-on %s practice and real-world scenarios", subject),
			"Implementing strategies and techniques in actual situations",
			"Problem-solving and troubleshooting common challenges",
			"Measuring success and tracking progress effectively",
			"Creating actionable plans for immediate implementation",
		}
	case RoleAssessment:
		return []string{
			fmt.Sprintf("Evaluating %s knowledge and skill mastery", subject),
			"Identifying areas for improvement and continued growth",
			"Planning next steps and advanced learning opportunities",
			"Creating long-term development strategies and goals",
			"Establishing feedback loops for continuous improvement",
		}
	default:
		return []string{
			fmt.Sprintf("Advanced %s concepts and specialized techniques", subject),
			"Expert-level applications and industry-specific uses",
			fmt.Sprintf("Leadership and innovation in %s", subject),
			"Integration strategies and cross-functional applications",
			"Continuous learning and professional development paths",
		}
	}
}
